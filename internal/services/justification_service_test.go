package services

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rotina-app/rotina-api/internal/access"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/repository"
	"github.com/rotina-app/rotina-api/internal/storage"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// JustificationServiceTestSuite covers the late-completion justification
// workflow end to end.
type JustificationServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	taskService *TaskService
	justService *JustificationService
	loc         *time.Location
	today       time.Time
}

func (suite *JustificationServiceTestSuite) SetupTest() {
	var err error

	suite.loc, err = time.LoadLocation("America/Sao_Paulo")
	suite.Require().NoError(err)
	suite.today = time.Date(2026, 2, 15, 10, 0, 0, 0, suite.loc)

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	// One connection keeps every goroutine on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = suite.db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Task{},
		&models.TaskJustification{},
		&models.JustificationEvidence{},
		&models.Rule{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	justRepo := repository.NewJustificationRepository(suite.db)
	ruleRepo := repository.NewRuleRepository(suite.db)
	store := storage.NewEvidenceStore(suite.T().TempDir())

	suite.taskService = NewTaskService(taskRepo, ruleRepo, suite.loc)
	suite.taskService.now = func() time.Time { return suite.today }

	suite.justService = NewJustificationService(justRepo, taskRepo, store, suite.loc)
	suite.justService.now = func() time.Time { return suite.today }
}

func (suite *JustificationServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *JustificationServiceTestSuite) userActor() access.Actor {
	return access.Actor{ID: 3, TenantID: 1, Email: "user@acme.com", Name: "Usuária", Role: models.RoleUser, Area: "Financeiro"}
}

func (suite *JustificationServiceTestSuite) leaderActor() access.Actor {
	return access.Actor{ID: 2, TenantID: 1, Email: "lead@acme.com", Role: models.RoleLeader, Area: "Financeiro"}
}

func (suite *JustificationServiceTestSuite) adminActor() access.Actor {
	return access.Actor{ID: 1, TenantID: 1, Email: "admin@acme.com", Role: models.RoleAdmin}
}

// createLateTask seeds a task completed strictly after its prazo.
func (suite *JustificationServiceTestSuite) createLateTask(responsible string) *models.Task {
	prazo := time.Date(2026, 2, 10, 0, 0, 0, 0, suite.loc)
	realizado := time.Date(2026, 2, 12, 0, 0, 0, 0, suite.loc)

	task := &models.Task{
		TenantID:         1,
		Area:             "Financeiro",
		Titulo:           "Fechamento mensal",
		ResponsibleEmail: responsible,
		ResponsibleName:  "Usuária",
		Prazo:            &prazo,
		Realizado:        &realizado,
		Status:           taskstatus.StatusDoneLate,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *JustificationServiceTestSuite) createOnTimeTask(responsible string) *models.Task {
	prazo := time.Date(2026, 2, 10, 0, 0, 0, 0, suite.loc)
	realizado := time.Date(2026, 2, 9, 0, 0, 0, 0, suite.loc)

	task := &models.Task{
		TenantID:         1,
		Area:             "Financeiro",
		Titulo:           "Conciliação",
		ResponsibleEmail: responsible,
		ResponsibleName:  "Usuária",
		Prazo:            &prazo,
		Realizado:        &realizado,
		Status:           taskstatus.StatusDone,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *JustificationServiceTestSuite) TestCreatePending() {
	task := suite.createLateTask("user@acme.com")

	j, err := suite.justService.Create(suite.userActor(), task.ID, "Atraso por falta de insumos")
	suite.Require().NoError(err)
	suite.Equal(models.JustificationPending, j.Status)
	suite.Equal("user@acme.com", j.CreatedBy)
	suite.Require().NotNil(j.PendingTaskID)
	suite.Equal(task.ID, *j.PendingTaskID)
}

func (suite *JustificationServiceTestSuite) TestCreateRequiresLateCompletion() {
	task := suite.createOnTimeTask("user@acme.com")

	_, err := suite.justService.Create(suite.userActor(), task.ID, "desnecessário")
	suite.ErrorIs(err, ErrTaskNotLate)

	var count int64
	suite.db.Model(&models.TaskJustification{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *JustificationServiceTestSuite) TestCreateRequiresResponsibleUser() {
	task := suite.createLateTask("someone-else@acme.com")

	_, err := suite.justService.Create(suite.userActor(), task.ID, "não sou eu")
	suite.ErrorIs(err, ErrNotResponsible)

	// Leaders and admins never create justifications, even for visible tasks.
	_, err = suite.justService.Create(suite.leaderActor(), task.ID, "como líder")
	suite.ErrorIs(err, ErrNotResponsible)
	_, err = suite.justService.Create(suite.adminActor(), task.ID, "como admin")
	suite.ErrorIs(err, ErrNotResponsible)
}

func (suite *JustificationServiceTestSuite) TestCreateRequiresDescription() {
	task := suite.createLateTask("user@acme.com")

	_, err := suite.justService.Create(suite.userActor(), task.ID, "   ")
	suite.ErrorIs(err, ErrDescriptionRequired)

	_, err = suite.justService.Create(suite.userActor(), task.ID, strings.Repeat("a", 2001))
	suite.ErrorIs(err, ErrDescriptionTooLong)
}

func (suite *JustificationServiceTestSuite) TestSecondPendingIsRejected() {
	task := suite.createLateTask("user@acme.com")

	_, err := suite.justService.Create(suite.userActor(), task.ID, "primeira")
	suite.Require().NoError(err)

	_, err = suite.justService.Create(suite.userActor(), task.ID, "segunda")
	suite.ErrorIs(err, ErrPendingExists)
}

func (suite *JustificationServiceTestSuite) TestConcurrentCreatesOnePendingWins() {
	task := suite.createLateTask("user@acme.com")
	actor := suite.userActor()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = suite.justService.Create(actor, task.ID, "corrida")
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range results {
		if err != nil {
			suite.ErrorIs(err, ErrPendingExists)
			failures++
		}
	}
	suite.Equal(1, failures, "exactly one create must lose the race")

	var count int64
	suite.db.Model(&models.TaskJustification{}).
		Where("status = ?", models.JustificationPending).
		Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *JustificationServiceTestSuite) TestReviewApproveDropsComment() {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	reviewed, err := suite.justService.Review(suite.leaderActor(), j.ID, ReviewApprove, "bom trabalho")
	suite.Require().NoError(err)
	suite.Equal(models.JustificationApproved, reviewed.Status)
	suite.Empty(reviewed.ReviewComment, "comments persist only on refusal paths")
	suite.Require().NotNil(reviewed.ReviewedBy)
	suite.Equal("lead@acme.com", *reviewed.ReviewedBy)
	suite.NotNil(reviewed.ReviewedAt)

	var stored models.TaskJustification
	suite.Require().NoError(suite.db.First(&stored, j.ID).Error)
	suite.Nil(stored.PendingTaskID)
	suite.Empty(stored.ReviewComment)
}

func (suite *JustificationServiceTestSuite) TestReviewRefuseKeepsComment() {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	reviewed, err := suite.justService.Review(suite.leaderActor(), j.ID, ReviewRefuse, "insuficiente")
	suite.Require().NoError(err)
	suite.Equal(models.JustificationRefused, reviewed.Status)
	suite.Equal("insuficiente", reviewed.ReviewComment)

	var task2 models.Task
	suite.Require().NoError(suite.db.First(&task2, task.ID).Error)
	suite.False(task2.JustificationBlocked, "plain refuse must not block the task")
}

func (suite *JustificationServiceTestSuite) TestReviewCommentTooLong() {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	_, err = suite.justService.Review(suite.leaderActor(), j.ID, ReviewRefuse, strings.Repeat("x", 2001))
	suite.ErrorIs(err, ErrCommentTooLong)
}

func (suite *JustificationServiceTestSuite) TestReviewTwiceFails() {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	_, err = suite.justService.Review(suite.leaderActor(), j.ID, ReviewApprove, "")
	suite.Require().NoError(err)

	_, err = suite.justService.Review(suite.leaderActor(), j.ID, ReviewRefuse, "")
	suite.ErrorIs(err, ErrAlreadyReviewed)
}

func (suite *JustificationServiceTestSuite) TestReviewScope() {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	// A leader of another area cannot even learn the justification exists.
	otherLeader := access.Actor{ID: 9, TenantID: 1, Email: "lead2@acme.com", Role: models.RoleLeader, Area: "Comercial"}
	_, err = suite.justService.Review(otherLeader, j.ID, ReviewApprove, "")
	suite.ErrorIs(err, ErrJustificationNotFound)

	// The responsible user sees it but may not review it.
	_, err = suite.justService.Review(suite.userActor(), j.ID, ReviewApprove, "")
	suite.ErrorIs(err, ErrReviewForbidden)

	// An admin reviews tenant-wide.
	_, err = suite.justService.Review(suite.adminActor(), j.ID, ReviewApprove, "")
	suite.NoError(err)
}

func (suite *JustificationServiceTestSuite) TestRefuseAndBlockCycle() {
	task := suite.createLateTask("user@acme.com")
	actor := suite.userActor()

	j, err := suite.justService.Create(actor, task.ID, "Atraso por falta de insumos")
	suite.Require().NoError(err)

	// refuse_and_block refuses the justification and blocks the task.
	reviewed, err := suite.justService.Review(suite.leaderActor(), j.ID, ReviewRefuseAndBlock, "recorrente")
	suite.Require().NoError(err)
	suite.Equal(models.JustificationRefused, reviewed.Status)

	var blocked models.Task
	suite.Require().NoError(suite.db.First(&blocked, task.ID).Error)
	suite.True(blocked.JustificationBlocked)
	suite.NotNil(blocked.JustificationBlockedAt)
	suite.Equal("lead@acme.com", blocked.JustificationBlockedBy)

	// A new justification is refused while the block stands.
	_, err = suite.justService.Create(actor, task.ID, "nova tentativa")
	suite.ErrorIs(err, ErrTaskBlocked)

	// Unblock lifts the flag and clears its metadata.
	suite.Require().NoError(suite.justService.Unblock(suite.leaderActor(), task.ID))

	var unblocked models.Task
	suite.Require().NoError(suite.db.First(&unblocked, task.ID).Error)
	suite.False(unblocked.JustificationBlocked)
	suite.Nil(unblocked.JustificationBlockedAt)
	suite.Empty(unblocked.JustificationBlockedBy)

	// The refused justification stays refused; a new cycle begins.
	var refused models.TaskJustification
	suite.Require().NoError(suite.db.First(&refused, j.ID).Error)
	suite.Equal(models.JustificationRefused, refused.Status)

	second, err := suite.justService.Create(actor, task.ID, "agora com evidência")
	suite.Require().NoError(err)
	suite.Equal(models.JustificationPending, second.Status)
}

func (suite *JustificationServiceTestSuite) TestUnblockScope() {
	task := suite.createLateTask("user@acme.com")

	err := suite.justService.Unblock(suite.userActor(), task.ID)
	suite.ErrorIs(err, ErrReviewForbidden)

	otherLeader := access.Actor{ID: 9, TenantID: 1, Email: "lead2@acme.com", Role: models.RoleLeader, Area: "Comercial"}
	err = suite.justService.Unblock(otherLeader, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *JustificationServiceTestSuite) TestCrossTenantJustificationIsInvisible() {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	foreignAdmin := access.Actor{ID: 99, TenantID: 2, Email: "admin@other.com", Role: models.RoleAdmin}
	_, err = suite.justService.Review(foreignAdmin, j.ID, ReviewApprove, "")
	suite.ErrorIs(err, ErrJustificationNotFound)
}

func (suite *JustificationServiceTestSuite) pendingWithEvidencePayload() (*models.TaskJustification, AttachEvidenceInput) {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	return j, AttachEvidenceInput{
		FileName: "nota-fiscal.pdf",
		MimeType: "application/pdf",
		Payload:  base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 conteudo")),
	}
}

func (suite *JustificationServiceTestSuite) TestAttachEvidence() {
	j, input := suite.pendingWithEvidencePayload()

	evidence, err := suite.justService.AttachEvidence(suite.userActor(), j.ID, input)
	suite.Require().NoError(err)
	suite.Equal("nota-fiscal.pdf", evidence.FileName)
	suite.Equal("application/pdf", evidence.MimeType)
	suite.Equal(int64(len("%PDF-1.4 conteudo")), evidence.FileSize)
	suite.Equal("user@acme.com", evidence.UploadedBy)
}

func (suite *JustificationServiceTestSuite) TestAttachEvidenceHardCapOfOne() {
	j, input := suite.pendingWithEvidencePayload()

	_, err := suite.justService.AttachEvidence(suite.userActor(), j.ID, input)
	suite.Require().NoError(err)

	_, err = suite.justService.AttachEvidence(suite.userActor(), j.ID, input)
	suite.ErrorIs(err, ErrEvidenceExists)
}

func (suite *JustificationServiceTestSuite) TestAttachEvidencePolicy() {
	j, input := suite.pendingWithEvidencePayload()
	actor := suite.userActor()

	bad := input
	bad.MimeType = "application/x-msdownload"
	_, err := suite.justService.AttachEvidence(actor, j.ID, bad)
	suite.ErrorIs(err, ErrEvidenceMimeNotAllowed)

	bad = input
	bad.Payload = "not-base64!!"
	_, err = suite.justService.AttachEvidence(actor, j.ID, bad)
	suite.ErrorIs(err, ErrInvalidEvidencePayload)

	bad = input
	bad.Payload = base64.StdEncoding.EncodeToString(make([]byte, 10<<20+1))
	_, err = suite.justService.AttachEvidence(actor, j.ID, bad)
	suite.ErrorIs(err, ErrEvidenceTooLarge)

	// Only the creator manages evidence.
	other := access.Actor{ID: 8, TenantID: 1, Email: "other@acme.com", Role: models.RoleUser, Area: "Financeiro"}
	_, err = suite.justService.AttachEvidence(other, j.ID, input)
	suite.ErrorIs(err, ErrNotEvidenceOwner)
}

func (suite *JustificationServiceTestSuite) TestAttachEvidenceAfterReviewFails() {
	j, input := suite.pendingWithEvidencePayload()

	_, err := suite.justService.Review(suite.leaderActor(), j.ID, ReviewApprove, "")
	suite.Require().NoError(err)

	_, err = suite.justService.AttachEvidence(suite.userActor(), j.ID, input)
	suite.ErrorIs(err, ErrAlreadyReviewed)
}

func (suite *JustificationServiceTestSuite) TestRemoveEvidence() {
	j, input := suite.pendingWithEvidencePayload()
	actor := suite.userActor()

	_, err := suite.justService.AttachEvidence(actor, j.ID, input)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.justService.RemoveEvidence(actor, j.ID))
	suite.ErrorIs(suite.justService.RemoveEvidence(actor, j.ID), ErrEvidenceNotFound)

	// The slot frees up for a replacement upload.
	_, err = suite.justService.AttachEvidence(actor, j.ID, input)
	suite.NoError(err)
}

func (suite *JustificationServiceTestSuite) TestComposite() {
	task := &models.Task{}
	suite.Equal(models.CompositeNone, Composite(task, nil))

	pending := &models.TaskJustification{Status: models.JustificationPending}
	suite.Equal(models.CompositePending, Composite(task, pending))

	approved := &models.TaskJustification{Status: models.JustificationApproved}
	suite.Equal(models.CompositeApproved, Composite(task, approved))

	refused := &models.TaskJustification{Status: models.JustificationRefused}
	suite.Equal(models.CompositeRefused, Composite(task, refused))

	// The task-level flag wins over whatever the justification says.
	blocked := &models.Task{JustificationBlocked: true}
	suite.Equal(models.CompositeBlocked, Composite(blocked, refused))
	suite.Equal(models.CompositeBlocked, Composite(blocked, nil))
}

func (suite *JustificationServiceTestSuite) TestMyLateTasks() {
	task := suite.createLateTask("user@acme.com")
	suite.createOnTimeTask("user@acme.com")
	suite.createLateTask("other@acme.com")

	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	views, total, err := suite.justService.MyLateTasks(suite.userActor(), 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(views, 1)
	suite.Equal(task.ID, views[0].Task.ID)
	suite.Equal(models.CompositePending, views[0].Composite)
	suite.Require().NotNil(views[0].Latest)
	suite.Equal(j.ID, views[0].Latest.ID)
}

func (suite *JustificationServiceTestSuite) TestQueueScoping() {
	task := suite.createLateTask("user@acme.com")
	_, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)

	pending, total, err := suite.justService.Queue(suite.leaderActor(), models.JustificationPending, 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(pending, 1)

	otherLeader := access.Actor{ID: 9, TenantID: 1, Email: "lead2@acme.com", Role: models.RoleLeader, Area: "Comercial"}
	pending, total, err = suite.justService.Queue(otherLeader, models.JustificationPending, 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(0), total)
	suite.Empty(pending)

	_, _, err = suite.justService.Queue(suite.userActor(), models.JustificationPending, 1, 20)
	suite.ErrorIs(err, ErrReviewForbidden)
}

func (suite *JustificationServiceTestSuite) TestBlockedTasksQueue() {
	task := suite.createLateTask("user@acme.com")
	j, err := suite.justService.Create(suite.userActor(), task.ID, "atraso")
	suite.Require().NoError(err)
	_, err = suite.justService.Review(suite.leaderActor(), j.ID, ReviewRefuseAndBlock, "recorrente")
	suite.Require().NoError(err)

	tasks, total, err := suite.justService.BlockedTasks(suite.leaderActor(), 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(tasks, 1)
	suite.Equal(task.ID, tasks[0].ID)
}

func TestJustificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JustificationServiceTestSuite))
}

func TestReviewActionValidation(t *testing.T) {
	loc := time.UTC
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Task{}, &models.TaskJustification{}, &models.JustificationEvidence{}))

	taskRepo := repository.NewTaskRepository(db)
	justRepo := repository.NewJustificationRepository(db)
	svc := NewJustificationService(justRepo, taskRepo, storage.NewEvidenceStore(t.TempDir()), loc)

	prazo := time.Date(2026, 2, 10, 0, 0, 0, 0, loc)
	realizado := time.Date(2026, 2, 12, 0, 0, 0, 0, loc)
	task := &models.Task{TenantID: 1, Area: "A", Titulo: "t", ResponsibleEmail: "u@x.com", Prazo: &prazo, Realizado: &realizado, Status: taskstatus.StatusDoneLate}
	require.NoError(t, db.Create(task).Error)

	actor := access.Actor{TenantID: 1, Email: "u@x.com", Role: models.RoleUser, Area: "A"}
	j, err := svc.Create(actor, task.ID, "atraso")
	require.NoError(t, err)

	reviewer := access.Actor{TenantID: 1, Email: "l@x.com", Role: models.RoleLeader, Area: "A"}
	_, err = svc.Review(reviewer, j.ID, ReviewAction("escalate"), "")
	require.ErrorIs(t, err, ErrInvalidReviewAction)
}
