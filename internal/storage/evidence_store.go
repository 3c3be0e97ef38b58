// Package storage persists decoded evidence payloads on disk. The policy
// checks (mime allow-list, size ceiling, one-per-justification) live in the
// justification service; this package only handles placement and naming.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EvidenceStore writes evidence files under a tenant+justification-scoped
// directory with collision-safe names.
type EvidenceStore struct {
	root string
}

// NewEvidenceStore creates an EvidenceStore rooted at dir.
func NewEvidenceStore(dir string) *EvidenceStore {
	return &EvidenceStore{root: dir}
}

// Save writes the payload and returns the stored path relative to the root.
// The name is prefixed with a random UUID so repeated uploads of the same
// file name never collide.
func (s *EvidenceStore) Save(tenantID, justificationID uint64, fileName string, payload []byte) (string, error) {
	dir := filepath.Join(s.root, fmt.Sprintf("%d", tenantID), fmt.Sprintf("%d", justificationID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create evidence directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFileName(fileName))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write evidence file: %w", err)
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve evidence path: %w", err)
	}
	return rel, nil
}

// Remove deletes a previously stored evidence file. A missing file is not
// an error; the database row is authoritative.
func (s *EvidenceStore) Remove(storedPath string) error {
	err := os.Remove(filepath.Join(s.root, storedPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove evidence file: %w", err)
	}
	return nil
}

// sanitizeFileName strips path separators so a client-supplied name can
// never escape the justification directory.
func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	if name == "" || name == "." || name == ".." {
		name = "evidence"
	}
	return name
}
