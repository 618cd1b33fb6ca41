// Package entity はtodoフィーチャーのドメインエンティティを定義します。
package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status はTodoの状態です。
// 遷移に制約はなく、どの状態からどの状態へも変更できます。
type Status string

// Status の値。保存時の文字列表現と一致します。
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid は定義済みの状態かどうかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus は保存形式の文字列をStatusへ変換します。
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown todo status %q", s)
	}
	return st, nil
}

// Todo はユーザーが所有するタスクです。
// UserID は作成後に変更できません。
type Todo struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description *string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
