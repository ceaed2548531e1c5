package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	notif "github.com/yungbote/careerbridge-backend/internal/domain/notification"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type EmailLogRepo interface {
	Create(dbc dbctx.Context, row *types.EmailLog) (*types.EmailLog, error)
	MarkSent(dbc dbctx.Context, id uuid.UUID, providerMessageID string, at time.Time) error
	MarkFailed(dbc dbctx.Context, id uuid.UUID, errMsg string) error
	ListByUserID(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EmailLog, error)
}

type emailLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmailLogRepo(db *gorm.DB, baseLog *logger.Logger) EmailLogRepo {
	return &emailLogRepo{db: db, log: baseLog.With("repo", "EmailLogRepo")}
}

func (r *emailLogRepo) Create(dbc dbctx.Context, row *types.EmailLog) (*types.EmailLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Status == "" {
		row.Status = notif.EmailQueued
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *emailLogRepo) MarkSent(dbc dbctx.Context, id uuid.UUID, providerMessageID string, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	at = at.UTC()
	return t.WithContext(dbc.Ctx).
		Model(&types.EmailLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              notif.EmailSent,
			"provider_message_id": providerMessageID,
			"sent_at":             &at,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func (r *emailLogRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, errMsg string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.EmailLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     notif.EmailFailed,
			"error":      errMsg,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *emailLogRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EmailLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.EmailLog
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
