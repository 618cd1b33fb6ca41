// Package handler はuserフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"todo_backend/internal/api"
	"todo_backend/internal/feature/user/domain/entity"
	"todo_backend/internal/feature/user/usecase"
	"todo_backend/internal/platform/http/respond"
)

// UserUsecase はユーザー操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	Register(ctx context.Context, in usecase.CreateUserInput) (*entity.User, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, id uuid.UUID, in usecase.UpdateUserInput) (*entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserHandler はユーザー操作のHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400
// - メール重複時は409
// - 成功時は201と作成したユーザー
func (h *UserHandler) Register(c *gin.Context) {
	var req api.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	user, err := h.users.Register(c.Request.Context(), usecase.CreateUserInput{
		Email: string(req.Email),
		Name:  req.Name,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Get は GET /users/:id を処理します。存在しない場合は404です。
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetByEmail は GET /users/by-email?email= を処理します。
func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respond.BadRequest(c, errors.New("email query parameter is required"))
		return
	}
	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "user not found"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// List は GET /users を処理します。作成日時の降順です。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]api.User, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Update は PATCH /users/:id を処理します。
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req api.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, usecase.UpdateUserInput{Name: req.Name})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete は DELETE /users/:id を処理します。存在しない場合も200で deleted=false を返します。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.users.Delete(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeletedResponse{Deleted: deleted})
}

func toUserResponse(u *entity.User) api.User {
	return api.User{
		ID:        u.ID,
		Email:     openapi_types.Email(u.Email),
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
