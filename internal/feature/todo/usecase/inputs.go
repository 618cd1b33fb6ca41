package usecase

import (
	"github.com/google/uuid"

	"todo_backend/internal/feature/todo/domain/entity"
)

// CreateTodoInput はTodo作成の入力です。
type CreateTodoInput struct {
	UserID      uuid.UUID
	Title       string
	Description *string
}

// UpdateTodoInput はTodo更新の入力です。nilのフィールドは指定なしを意味します。
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Status      *entity.Status
}
