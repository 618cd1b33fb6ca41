package adapters

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"todo_backend/internal/platform/db"
	"todo_backend/internal/platform/jobqueue"
	"todo_backend/internal/shared/apperror"
	"todo_backend/internal/testutil"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t, &UserModel{}, &jobqueue.Job{})
}

// setupMockDB opens a PostgreSQL-dialect gorm.DB over sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), db.NewGormConfig(zap.NewNop(), gormlogger.Silent))
	require.NoError(t, err)
	return gdb, mock
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		user, err := repo.Create(ctx, "test@example.com", "Test")

		require.NoError(t, err, "failed to create user")
		assert.NotEqual(t, uuid.Nil, user.ID, "ID is not set")
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, "Test", user.Name)
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("duplicate email is a unique violation", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		_, err := repo.Create(ctx, "duplicate@example.com", "First")
		require.NoError(t, err, "failed to create first user")

		user, err := repo.Create(ctx, "duplicate@example.com", "Second")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperror.ErrStorage)
		assert.True(t, apperror.IsUniqueViolation(err), "should be flagged as unique violation: %v", err)
	})
}

func TestUserGorm_Find(t *testing.T) {
	ctx := context.Background()
	repo := NewUserGorm(setupTestDB(t))

	created := make([]string, 0, 3)
	for _, email := range []string{"user1@example.com", "user2@example.com", "user3@example.com"} {
		u, err := repo.Create(ctx, email, "name")
		require.NoError(t, err, "failed to create test data")
		created = append(created, u.ID.String())
	}

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.MustParse(created[1]))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "user2@example.com", found.Email)
	})

	t.Run("find by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "user3@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created[2], found.ID.String())
	})

	t.Run("absent id is nil without error", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("absent email is nil without error", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "notfound@example.com")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestUserGorm_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		users, err := NewUserGorm(setupTestDB(t)).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("newest first", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		for _, email := range []string{"first@example.com", "second@example.com", "third@example.com"} {
			_, err := repo.Create(ctx, email, "name")
			require.NoError(t, err)
		}

		users, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "third@example.com", users[0].Email)
		assert.Equal(t, "second@example.com", users[1].Email)
		assert.Equal(t, "first@example.com", users[2].Email)
	})
}

func TestUserGorm_UpdateName(t *testing.T) {
	ctx := context.Background()

	t.Run("updates name and advances updated_at", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))
		user, err := repo.Create(ctx, "rename@example.com", "Before")
		require.NoError(t, err)

		updated, err := repo.UpdateName(ctx, user.ID, "After")

		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "After", updated.Name)
		assert.Equal(t, user.Email, updated.Email)
		assert.True(t, user.CreatedAt.Equal(updated.CreatedAt), "created_at must not change")
		assert.True(t, updated.UpdatedAt.After(user.UpdatedAt), "updated_at should advance")
	})

	t.Run("absent id returns nil", func(t *testing.T) {
		repo := NewUserGorm(setupTestDB(t))

		updated, err := repo.UpdateName(ctx, uuid.New(), "Nobody")

		assert.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestUserGorm_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewUserGorm(setupTestDB(t))
	user, err := repo.Create(ctx, "delete@example.com", "Gone")
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	deleted, err = repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete should report nothing removed")
}

func TestUserGorm_Postgres(t *testing.T) {
	ctx := context.Background()

	t.Run("unique violation sqlstate is flagged", func(t *testing.T) {
		gdb, mock := setupMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "uk_users_email"`})

		_, err := NewUserGorm(gdb).Create(ctx, "dup@example.com", "Dup")

		assert.True(t, apperror.IsUniqueViolation(err), "got %v", err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other failures are storage errors", func(t *testing.T) {
		gdb, mock := setupMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
			WillReturnError(&pgconn.PgError{Code: "57P01", Message: "terminating connection"})

		_, err := NewUserGorm(gdb).FindByEmail(ctx, "a@example.com")

		var se *apperror.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "users.find_by_email", se.Op)
		assert.False(t, se.IsUniqueViolation())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
