package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type MilestoneRepo interface {
	Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error)
	ListByPhaseID(dbc dbctx.Context, phaseID uuid.UUID) ([]*types.Milestone, error)

	// SetCompleted writes the cached completion flag. completedAt is cleared when completed is false.
	SetCompleted(dbc dbctx.Context, id uuid.UUID, completed bool, completedAt *time.Time) error
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

func (r *milestoneRepo) Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Milestone{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *milestoneRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Milestone
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *milestoneRepo) ListByPhaseID(dbc dbctx.Context, phaseID uuid.UUID) ([]*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Milestone
	if phaseID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("phase_id = ?", phaseID).
		Order("order_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) SetCompleted(dbc dbctx.Context, id uuid.UUID, completed bool, completedAt *time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if !completed {
		completedAt = nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Milestone{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_completed": completed,
			"completed_at": completedAt,
			"updated_at":   time.Now().UTC(),
		}).Error
}
