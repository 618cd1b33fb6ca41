// Package respond はドメインエラーをHTTPレスポンスへ変換します。
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo_backend/internal/api"
	"todo_backend/internal/platform/logger"
	"todo_backend/internal/shared/apperror"
)

// StatusFor はエラーに対応するHTTPステータスを返します。
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrEmailExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error はエラーをJSONで返します。
// 5xxの場合は内部情報を公開せず、詳細はログにのみ出力します。
func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, api.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, api.ErrorResponse{Error: err.Error()})
}

// BadRequest はバリデーションエラーを400で返します。
func BadRequest(c *gin.Context, err error) {
	logger.L().Warn("request validation failed",
		zap.String("path", c.FullPath()),
		zap.String("remote_addr", c.ClientIP()),
		zap.Error(err),
	)
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
}

// ParamUUID はパスパラメーターをUUIDとして解釈します。
// 不正な場合は400を書き込みfalseを返します。
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, errors.New("invalid "+name+": must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
