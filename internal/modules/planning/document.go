package planning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
)

// CandidatePlan is the provider's structured output before validation.
// Field names match the JSON schema sent with the generation request.
type CandidatePlan struct {
	TargetCareer       string           `json:"targetCareer"`
	CurrentCareer      string           `json:"currentCareer"`
	EstimatedDuration  string           `json:"estimatedDuration"`
	SalaryExpectations *CandidateSalary `json:"salaryExpectations"`
	JobMarketOutlook   string           `json:"jobMarketOutlook"`
	Phases             []CandidatePhase `json:"phases"`
}

type CandidateSalary struct {
	Entry       string `json:"entry"`
	Experienced string `json:"experienced"`
}

type CandidatePhase struct {
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	EstimatedDuration string               `json:"estimatedDuration"`
	OrderIndex        int                  `json:"orderIndex"`
	Milestones        []CandidateMilestone `json:"milestones"`
}

type CandidateMilestone struct {
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	OrderIndex           int                 `json:"orderIndex"`
	CompletionCriteria   string              `json:"completionCriteria"`
	VerificationRequired bool                `json:"verificationRequired"`
	Tasks                []CandidateTask     `json:"tasks"`
	Resources            []CandidateResource `json:"resources"`
}

type CandidateTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"orderIndex"`
}

type CandidateResource struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	URL          string  `json:"url"`
	Type         string  `json:"type"`
	Cost         string  `json:"cost"`
	Duration     *string `json:"duration"`
	Location     *string `json:"location"`
	Provider     *string `json:"provider"`
	IsAccredited *bool   `json:"isAccredited"`
}

// DecodeCandidate converts a provider JSON object into a CandidatePlan.
// Shape errors (wrong types, fractional order indexes) are returned as-is and
// count as a failed attempt.
func DecodeCandidate(obj map[string]any) (*CandidatePlan, error) {
	if obj == nil {
		return nil, fmt.Errorf("empty candidate")
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode candidate: %w", err)
	}
	var out CandidatePlan
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", err)
	}
	return &out, nil
}

// Counts returns phase, milestone, task and resource totals.
func (c *CandidatePlan) Counts() (phases, milestones, tasks, resources int) {
	if c == nil {
		return 0, 0, 0, 0
	}
	phases = len(c.Phases)
	for _, ph := range c.Phases {
		milestones += len(ph.Milestones)
		for _, m := range ph.Milestones {
			tasks += len(m.Tasks)
			resources += len(m.Resources)
		}
	}
	return phases, milestones, tasks, resources
}

// ToDomain builds an unsaved plan tree. IDs and parent keys are assigned by
// the plan aggregate on insert.
func (c *CandidatePlan) ToDomain(userID uuid.UUID, conversationID *uuid.UUID, now time.Time) *types.Plan {
	if c == nil {
		return nil
	}
	p := &types.Plan{
		UserID:            userID,
		ConversationID:    conversationID,
		TargetCareer:      strings.TrimSpace(c.TargetCareer),
		CurrentCareer:     strings.TrimSpace(c.CurrentCareer),
		EstimatedDuration: strings.TrimSpace(c.EstimatedDuration),
		JobMarketOutlook:  strings.TrimSpace(c.JobMarketOutlook),
		Status:            plan.StatusActive,
		GeneratedAt:       now,
		LastActivityAt:    now,
	}
	if c.SalaryExpectations != nil {
		p.SalaryExpectations = datatypes.NewJSONType(&types.SalaryExpectations{
			Entry:       strings.TrimSpace(c.SalaryExpectations.Entry),
			Experienced: strings.TrimSpace(c.SalaryExpectations.Experienced),
		})
	}

	p.Phases = make([]*types.Phase, 0, len(c.Phases))
	for _, cp := range c.Phases {
		ph := &types.Phase{
			Title:             strings.TrimSpace(cp.Title),
			Description:       strings.TrimSpace(cp.Description),
			EstimatedDuration: strings.TrimSpace(cp.EstimatedDuration),
			OrderIndex:        cp.OrderIndex,
		}
		for _, cm := range cp.Milestones {
			m := &types.Milestone{
				Title:                strings.TrimSpace(cm.Title),
				Description:          strings.TrimSpace(cm.Description),
				OrderIndex:           cm.OrderIndex,
				CompletionCriteria:   strings.TrimSpace(cm.CompletionCriteria),
				VerificationRequired: cm.VerificationRequired,
			}
			for _, ct := range cm.Tasks {
				m.Tasks = append(m.Tasks, &types.Task{
					Title:       strings.TrimSpace(ct.Title),
					Description: strings.TrimSpace(ct.Description),
					OrderIndex:  ct.OrderIndex,
				})
			}
			for _, cr := range cm.Resources {
				m.Resources = append(m.Resources, &types.Resource{
					Title:        strings.TrimSpace(cr.Title),
					Description:  strings.TrimSpace(cr.Description),
					URL:          strings.TrimSpace(cr.URL),
					Type:         strings.TrimSpace(cr.Type),
					Cost:         strings.TrimSpace(cr.Cost),
					Duration:     trimmedOrNil(cr.Duration),
					Location:     trimmedOrNil(cr.Location),
					Provider:     trimmedOrNil(cr.Provider),
					IsAccredited: cr.IsAccredited,
				})
			}
			ph.Milestones = append(ph.Milestones, m)
		}
		p.Phases = append(p.Phases, ph)
	}
	plan.SortTree(p)
	return p
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
