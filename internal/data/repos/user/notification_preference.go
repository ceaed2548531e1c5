package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type NotificationPreferenceRepo interface {
	// GetByUserID returns nil, nil when the user never saved preferences.
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.NotificationPreference, error)
	Upsert(dbc dbctx.Context, row *types.NotificationPreference) error
}

type notificationPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) NotificationPreferenceRepo {
	return &notificationPreferenceRepo{db: db, log: baseLog.With("repo", "NotificationPreferenceRepo")}
}

func (r *notificationPreferenceRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.NotificationPreference, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.NotificationPreference
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *notificationPreferenceRepo) Upsert(dbc dbctx.Context, row *types.NotificationPreference) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email_reminders",
				"reminder_frequency",
				"milestone_emails",
				"phase_completion_emails",
				"marketing_emails",
				"updated_at",
			}),
		}).
		Create(row).Error
}
