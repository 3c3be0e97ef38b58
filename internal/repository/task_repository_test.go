package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rotina-app/rotina-api/internal/taskstatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB returns a gorm handle backed by sqlmock so the generated SQL
// can be asserted against.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

// Every listing query must carry the tenant filter. A missing clause here
// is a cross-tenant data leak, so the SQL itself is pinned down.
func TestListQueriesAreTenantScoped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` WHERE tasks\\.tenant_id = \\?").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE tasks\\.tenant_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "titulo"}).
			AddRow(1, 42, "Fechamento").
			AddRow(2, 42, "Conciliação"))

	tasks, total, err := repo.List(TaskFilter{TenantID: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, tasks, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesAreaAndStatusFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	status := taskstatus.StatusOverdue
	area := "Financeiro"

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` WHERE tasks\\.tenant_id = \\? AND tasks\\.area = \\? AND tasks\\.status = \\?").
		WithArgs(42, "Financeiro", string(taskstatus.StatusOverdue)).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE tasks\\.tenant_id = \\? AND tasks\\.area = \\? AND tasks\\.status = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "titulo"}).
			AddRow(1, 42, "Fechamento"))

	_, total, err := repo.List(TaskFilter{TenantID: 42, Area: &area, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDIsTenantScoped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE tenant_id = \\? AND `tasks`\\.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "titulo"}).
			AddRow(7, 42, "Fechamento"))

	task, err := repo.FindByID(42, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), task.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// A read-path status refresh must write the status column and nothing else;
// a full-row save here could clobber a concurrent update with stale data.
func TestUpdateStatusTouchesOnlyStatusColumn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks` SET `status`=\\?,`updated_at`=\\? WHERE tenant_id = \\? AND id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(42, 7, taskstatus.StatusOverdue)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRowReportsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks` SET `deleted_at`=\\? WHERE tenant_id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(42, 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
