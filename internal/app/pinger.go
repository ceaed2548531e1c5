package app

import (
	"context"

	"gorm.io/gorm"
)

// pinger adapts gorm to the health check.
type pinger struct{ db *gorm.DB }

func (p pinger) PingContext(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
