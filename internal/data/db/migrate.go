package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.AllModels()...)
}

// EnsurePlanIndexes adds the indexes gorm tags cannot express.
func EnsurePlanIndexes(db *gorm.DB) error {
	// At most one active plan per user; CreateTree archives the previous one first.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_plan_one_active_per_user
		ON plan (user_id)
		WHERE status = 'active' AND deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_plan_one_active_per_user: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_plan_user_generated
		ON plan (user_id, generated_at DESC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_plan_user_generated: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_plan_stale_active
		ON plan (last_activity_at)
		WHERE status = 'active' AND deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_plan_stale_active: %w", err)
	}
	return nil
}

func EnsureChatIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_conversation_user_status
		ON conversation (user_id, status, last_message_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_conversation_user_status: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsurePlanIndexes(s.db); err != nil {
		s.log.Error("Plan index migration failed", "error", err)
		return err
	}
	if err := EnsureChatIndexes(s.db); err != nil {
		s.log.Error("Chat index migration failed", "error", err)
		return err
	}
	return nil
}
