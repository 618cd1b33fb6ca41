package usecase

import (
	"context"

	"github.com/google/uuid"

	"todo_backend/internal/feature/todo/domain/entity"
	userentity "todo_backend/internal/feature/user/domain/entity"
)

// TodoRepository はTodoエンティティの永続化層を抽象化します。
// 存在しない場合の戻り値は (nil, nil) で、エラーはストレージ障害のみを表します。
type TodoRepository interface {
	// Create はPending状態のTodoを保存します。
	Create(ctx context.Context, userID uuid.UUID, title string, description *string) (*entity.Todo, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Todo, error)

	// ListByUser と ListByUserAndStatus は作成日時の降順で返します。
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Todo, error)
	ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status entity.Status) ([]entity.Todo, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status) (*entity.Todo, error)

	// UpdateContent はtitleとdescriptionの両方を置き換えます。
	UpdateContent(ctx context.Context, id uuid.UUID, title string, description *string) (*entity.Todo, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserFinder はTodo作成時の所有者確認に使います。
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
}
