package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"vecinu/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	found := uuid.New()
	missing := uuid.New()

	tests := []struct {
		name          string
		userID        uuid.UUID
		mockBehavior  func()
		expectedName  string
		expectedError string
	}{
		{
			name:   "Success",
			userID: found,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "email", "full_name", "role"}).
					AddRow(found.String(), "ana@example.com", "Ana Pop", "user")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(found, 1).
					WillReturnRows(rows)
			},
			expectedName: "Ana Pop",
		},
		{
			name:   "Not Found",
			userID: missing,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
					WithArgs(missing, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError != "" {
				assert.True(t, models.IsCode(err, tt.expectedError), "got %v", err)
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.expectedName, user.FullName)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNeighborhoodRepository_ListActive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNeighborhoodRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "neighborhoods" WHERE is_active = $1 ORDER BY name ASC`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(uuid.NewString(), "Centru", "centru").
			AddRow(uuid.NewString(), "Mărăști", "marasti"))

	out, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "centru", out[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_ResolveAlreadyHandled(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reports" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Resolve(context.Background(), uuid.New(), ReportResolution{
		Status:     models.ReportDismissed,
		ReviewedBy: uuid.New(),
		ReviewedAt: time.Now(),
	})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepository_Append(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAuditLogRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "audit_logs"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry := &models.AuditLog{
		AdminID:    uuid.New(),
		Action:     models.AuditHidePost,
		TargetType: models.TargetPost,
		TargetID:   uuid.New(),
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_IncrementViews(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"=view_count + 1 WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.IncrementViews(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "%bicicleta%", likePattern("bicicleta"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestClampLimit(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultPageSize, ClampLimit(0))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxPageSize, ClampLimit(500))
	assert.Equal(t, 40, Offset(3, 20))
	assert.Equal(t, 0, Offset(0, 20))
}
