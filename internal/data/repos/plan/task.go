package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, rows []*types.Task) ([]*types.Task, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	ListByMilestoneID(dbc dbctx.Context, milestoneID uuid.UUID) ([]*types.Task, error)
	SetCompleted(dbc dbctx.Context, id uuid.UUID, completed bool, completedAt *time.Time) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(dbc dbctx.Context, rows []*types.Task) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Task{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *taskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Task
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *taskRepo) ListByMilestoneID(dbc dbctx.Context, milestoneID uuid.UUID) ([]*types.Task, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Task
	if milestoneID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("milestone_id = ?", milestoneID).
		Order("order_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) SetCompleted(dbc dbctx.Context, id uuid.UUID, completed bool, completedAt *time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if !completed {
		completedAt = nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_completed": completed,
			"completed_at": completedAt,
			"updated_at":   time.Now().UTC(),
		}).Error
}
