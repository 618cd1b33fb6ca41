// Package apperror はアプリケーション全体で共有するドメインエラーを定義します。
// すべての型はerrors.Isで番兵エラーと、errors.Asで型そのものと照合できます。
package apperror

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// 番兵エラー。上位レイヤーはerrors.Isでこれらと比較します。
var (
	// ErrStorage はデータベース操作の失敗を表します。
	ErrStorage = errors.New("storage error")

	// ErrNotFound は指定IDのエンティティが存在しないことを表します。
	ErrNotFound = errors.New("not found")

	// ErrUserNotFound はTodoの所有者となるユーザーが存在しないことを表します。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists は登録済みのメールアドレスで登録しようとしたことを表します。
	ErrEmailExists = errors.New("email already exists")

	// ErrQueue はジョブのエンキュー失敗を表します。
	ErrQueue = errors.New("queue error")
)

// StorageError はストレージ層の失敗をラップします。
// Op は失敗した操作名（例: "users.create"）です。
type StorageError struct {
	Op     string
	Err    error
	unique bool
}

// NewStorageError は操作名と元のエラーからStorageErrorを生成します。
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// NewUniqueViolation は一意制約違反として印を付けたStorageErrorを生成します。
func NewUniqueViolation(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err, unique: true}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("database error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is はErrStorageとの比較を可能にします。
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsUniqueViolation は一意制約違反によって発生したエラーかどうかを返します。
func (e *StorageError) IsUniqueViolation() bool { return e.unique }

// NotFoundError は指定IDのエンティティが存在しない場合に返されます。
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

// NotFound はNotFoundErrorを生成します。
func NotFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UserNotFoundError はTodo作成時に所有者が存在しない場合に返されます。
type UserNotFoundError struct {
	UserID uuid.UUID
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

func (e *UserNotFoundError) Is(target error) bool { return target == ErrUserNotFound }

// EmailExistsError はメールアドレスの重複登録時に返されます。
type EmailExistsError struct {
	Email string
}

func (e *EmailExistsError) Error() string {
	return fmt.Sprintf("email already exists: %s", e.Email)
}

func (e *EmailExistsError) Is(target error) bool { return target == ErrEmailExists }

// QueueError はジョブのエンキューに失敗した場合に返されます。
type QueueError struct {
	Err error
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("queue error: %v", e.Err)
}

func (e *QueueError) Unwrap() error { return e.Err }

func (e *QueueError) Is(target error) bool { return target == ErrQueue }

// IsUniqueViolation はエラーチェーン中に一意制約違反のStorageErrorがあるかを返します。
func IsUniqueViolation(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.IsUniqueViolation()
}
