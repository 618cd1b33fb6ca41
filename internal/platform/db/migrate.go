package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"todo_backend/internal/platform/logger"
)

// Migrate はmodelsを順にAutoMigrateします。
// 外部キーの参照先を先に渡してください（users → todos → jobs）。
func Migrate(ctx context.Context, db *gorm.DB, models ...any) error {
	conn := db.WithContext(ctx)
	for _, m := range models {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	logger.L().Info("database migrated", zap.Int("models", len(models)), zap.String("dialect", db.Dialector.Name()))
	return nil
}
