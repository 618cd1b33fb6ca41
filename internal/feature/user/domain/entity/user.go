// Package entity はuserフィーチャーのドメインエンティティを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User はシステムに登録されたユーザーを表します。
// Email は作成後に変更できず、全ユーザーで一意です。
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
