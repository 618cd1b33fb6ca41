package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction はfnを単一のトランザクション内で実行します。
// fnがエラーを返すかpanicした場合はロールバックし、成功時のみコミットします。
// fnに渡されるtxから生成したリポジトリは、すべて同じトランザクションに参加します。
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
