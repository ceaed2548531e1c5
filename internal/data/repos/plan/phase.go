package plan

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type PhaseRepo interface {
	Create(dbc dbctx.Context, rows []*types.Phase) ([]*types.Phase, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Phase, error)
	ListByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*types.Phase, error)
}

type phaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhaseRepo(db *gorm.DB, baseLog *logger.Logger) PhaseRepo {
	return &phaseRepo{db: db, log: baseLog.With("repo", "PhaseRepo")}
}

func (r *phaseRepo) Create(dbc dbctx.Context, rows []*types.Phase) ([]*types.Phase, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Phase{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *phaseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Phase, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Phase
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *phaseRepo) ListByPlanID(dbc dbctx.Context, planID uuid.UUID) ([]*types.Phase, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Phase
	if planID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("plan_id = ?", planID).
		Order("order_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
