package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	planstatus "github.com/yungbote/careerbridge-backend/internal/domain/plan"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type PlanRepo interface {
	Create(dbc dbctx.Context, rows []*types.Plan) ([]*types.Plan, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error)
	GetActiveByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Plan, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Plan, error)
	ListStaleActive(dbc dbctx.Context, before time.Time, limit int) ([]*types.Plan, error)

	// LoadTree returns the plan with every level preloaded and ordered by order_index.
	LoadTree(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error)

	ArchiveActiveByUserID(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error

	// TouchActivity advances last_activity_at to at; it never moves backwards.
	TouchActivity(dbc dbctx.Context, id uuid.UUID, at time.Time) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) Create(dbc dbctx.Context, rows []*types.Plan) ([]*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Plan{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *planRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Plan
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *planRepo) GetActiveByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Plan
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND status = ?", userID, planstatus.StatusActive).
		Order("generated_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *planRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Plan
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("generated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) ListStaleActive(dbc dbctx.Context, before time.Time, limit int) ([]*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Plan
	q := t.WithContext(dbc.Ctx).
		Where("status = ? AND last_activity_at < ?", planstatus.StatusActive, before).
		Order("last_activity_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) LoadTree(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	byOrder := func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC") }
	var out []*types.Plan
	if err := t.WithContext(dbc.Ctx).
		Preload("Phases", byOrder).
		Preload("Phases.Milestones", byOrder).
		Preload("Phases.Milestones.Tasks", byOrder).
		Preload("Phases.Milestones.Resources", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *planRepo) ArchiveActiveByUserID(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND status = ?", userID, planstatus.StatusActive).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     planstatus.StatusArchived,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *planRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *planRepo) TouchActivity(dbc dbctx.Context, id uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_activity_at": gorm.Expr("GREATEST(last_activity_at, ?)", at.UTC()),
			"updated_at":       time.Now().UTC(),
		}).Error
}
