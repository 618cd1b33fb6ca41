// Package api はHTTP APIのリクエスト/レスポンス型を定義します。
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeletedResponse は削除APIのレスポンスです。対象が存在しなかった場合もDeletedはfalseで200を返します。
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// User はユーザーのレスポンス表現です。
type User struct {
	ID        openapi_types.UUID  `json:"id"`
	Email     openapi_types.Email `json:"email"`
	Name      string              `json:"name"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// RegisterUserRequest は POST /users のリクエストボディです。
type RegisterUserRequest struct {
	Email openapi_types.Email `json:"email" binding:"required,email,max=255"`
	Name  string              `json:"name" binding:"required,max=255"`
}

// UpdateUserRequest は PATCH /users/:id のリクエストボディです。
type UpdateUserRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=255"`
}

// TodoStatus はTodoの状態の外部表現です。
type TodoStatus string

// TodoStatus の値
const (
	TodoStatusPending    TodoStatus = "PENDING"
	TodoStatusInProgress TodoStatus = "IN_PROGRESS"
	TodoStatusCompleted  TodoStatus = "COMPLETED"
)

// Todo はTodoのレスポンス表現です。
type Todo struct {
	ID          openapi_types.UUID `json:"id"`
	UserID      openapi_types.UUID `json:"user_id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      TodoStatus         `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateTodoRequest は POST /todos のリクエストボディです。
type CreateTodoRequest struct {
	UserID      openapi_types.UUID `json:"user_id" binding:"required"`
	Title       string             `json:"title" binding:"required,max=255"`
	Description *string            `json:"description"`
}

// UpdateTodoRequest は PATCH /todos/:id のリクエストボディです。
// 未指定のフィールドは既存の値を維持します。
type UpdateTodoRequest struct {
	Title       *string     `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string     `json:"description"`
	Status      *TodoStatus `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
}
