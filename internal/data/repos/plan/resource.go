package plan

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type ResourceRepo interface {
	Create(dbc dbctx.Context, rows []*types.Resource) ([]*types.Resource, error)
	ListByMilestoneID(dbc dbctx.Context, milestoneID uuid.UUID, limit int) ([]*types.Resource, error)
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{db: db, log: baseLog.With("repo", "ResourceRepo")}
}

func (r *resourceRepo) Create(dbc dbctx.Context, rows []*types.Resource) ([]*types.Resource, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Resource{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *resourceRepo) ListByMilestoneID(dbc dbctx.Context, milestoneID uuid.UUID, limit int) ([]*types.Resource, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Resource
	if milestoneID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).
		Where("milestone_id = ?", milestoneID).
		Order("position ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
