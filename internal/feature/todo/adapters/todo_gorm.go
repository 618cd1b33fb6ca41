// Package adapters はtodoフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo_backend/internal/feature/todo/domain/entity"
	"todo_backend/internal/feature/todo/usecase"
	"todo_backend/internal/platform/db"
	"todo_backend/internal/shared/apperror"
)

// todoGorm はTodoRepositoryインターフェースのGORM実装です。
type todoGorm struct {
	db *gorm.DB
}

var _ usecase.TodoRepository = (*todoGorm)(nil)

// NewTodoGorm は指定されたgorm.DBでtodoGormの新しいインスタンスを生成します。
func NewTodoGorm(db *gorm.DB) *todoGorm {
	return &todoGorm{db: db}
}

// Create はPending状態のTodoを追加します。
// 所有者の行が存在しない場合（確認後に削除された場合を含む）はUserNotFoundErrorを返します。
func (r *todoGorm) Create(ctx context.Context, userID uuid.UUID, title string, description *string) (*entity.Todo, error) {
	now := r.db.NowFunc()
	m := &TodoModel{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      string(entity.StatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, &apperror.UserNotFoundError{UserID: userID}
		}
		return nil, apperror.NewStorageError("todos.create", err)
	}
	return r.toEntity("todos.create", m)
}

// FindByID はIDでTodoを取得します。存在しない場合は (nil, nil) を返します。
func (r *todoGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.Todo, error) {
	return r.take(ctx, "todos.find_by_id", id)
}

// ListByUser はユーザーのTodoを作成日時の降順で返します。
func (r *todoGorm) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Todo, error) {
	return r.list(ctx, "todos.list_by_user", r.db.Where("user_id = ?", userID))
}

// ListByUserAndStatus はユーザーのTodoのうち指定状態のものを作成日時の降順で返します。
func (r *todoGorm) ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status entity.Status) ([]entity.Todo, error) {
	return r.list(ctx, "todos.list_by_user_and_status",
		r.db.Where("user_id = ? AND status = ?", userID, string(status)))
}

// UpdateStatus は状態とupdated_atを更新します。対象行が存在しない場合は (nil, nil) を返します。
func (r *todoGorm) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status) (*entity.Todo, error) {
	return r.update(ctx, "todos.update_status", id, map[string]any{
		"status": string(status),
	})
}

// UpdateContent はtitleとdescriptionを置き換えます。descriptionがnilの場合はNULLを書き込みます。
func (r *todoGorm) UpdateContent(ctx context.Context, id uuid.UUID, title string, description *string) (*entity.Todo, error) {
	return r.update(ctx, "todos.update_content", id, map[string]any{
		"title":       title,
		"description": description,
	})
}

// Delete はTodoを削除し、行が削除された場合にtrueを返します。
func (r *todoGorm) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TodoModel{})
	if res.Error != nil {
		return false, apperror.NewStorageError("todos.delete", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *todoGorm) update(ctx context.Context, op string, id uuid.UUID, values map[string]any) (*entity.Todo, error) {
	values["updated_at"] = r.db.NowFunc()
	res := r.db.WithContext(ctx).
		Model(&TodoModel{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return nil, apperror.NewStorageError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.take(ctx, op, id)
}

func (r *todoGorm) take(ctx context.Context, op string, id uuid.UUID) (*entity.Todo, error) {
	var m TodoModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.NewStorageError(op, err)
	}
	return r.toEntity(op, &m)
}

func (r *todoGorm) list(ctx context.Context, op string, scope *gorm.DB) ([]entity.Todo, error) {
	var rows []TodoModel
	if err := scope.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperror.NewStorageError(op, err)
	}
	todos := make([]entity.Todo, 0, len(rows))
	for i := range rows {
		td, err := r.toEntity(op, &rows[i])
		if err != nil {
			return nil, err
		}
		todos = append(todos, *td)
	}
	return todos, nil
}

func (r *todoGorm) toEntity(op string, m *TodoModel) (*entity.Todo, error) {
	td, err := m.ToEntity()
	if err != nil {
		return nil, apperror.NewStorageError(op, err)
	}
	return td, nil
}
