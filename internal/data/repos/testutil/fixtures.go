package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Conversation {
	tb.Helper()
	c := &types.Conversation{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "intake",
		Type:   chat.ConversationIntake,
		Status: chat.ConversationActive,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

// Profile returns an unsaved, valid profile for userID.
func Profile(userID uuid.UUID) *types.UserProfile {
	return &types.UserProfile{
		ID:                      uuid.New(),
		UserID:                  userID,
		FirstName:               "Dana",
		LastName:                "Reyes",
		Location:                "Wichita, KS",
		IsKansasResident:        true,
		CurrentEmploymentStatus: "employed",
		CurrentJobTitle:         "Retail Manager",
		EducationLevel:          "some_college",
		AvailableHoursPerWeek:   10,
		HasTransportation:       true,
		FinancialSituation:      "needs_free_only",
		LearningPreference:      "online",
	}
}

// PlanTree builds an unsaved plan whose shape follows taskCounts:
// taskCounts[p][m] is the number of tasks in milestone m of phase p. Every
// entity gets an ID and a dense order index; each milestone gets one resource.
func PlanTree(userID uuid.UUID, taskCounts ...[]int) *types.Plan {
	now := time.Now().UTC()
	p := &types.Plan{
		ID:                uuid.New(),
		UserID:            userID,
		TargetCareer:      "data analyst",
		CurrentCareer:     "retail manager",
		EstimatedDuration: "6-9 months",
		Status:            plan.StatusActive,
		GeneratedAt:       now,
		LastActivityAt:    now,
		CreatedAt:         now,
	}
	for pi, milestones := range taskCounts {
		ph := &types.Phase{
			ID:                uuid.New(),
			PlanID:            p.ID,
			Title:             fmt.Sprintf("Phase %d", pi+1),
			Description:       "phase",
			EstimatedDuration: "2 months",
			OrderIndex:        pi,
		}
		for mi, n := range milestones {
			m := &types.Milestone{
				ID:                 uuid.New(),
				PhaseID:            ph.ID,
				Title:              fmt.Sprintf("Milestone %d.%d", pi+1, mi+1),
				Description:        "milestone",
				OrderIndex:         mi,
				CompletionCriteria: "done",
			}
			for ti := 0; ti < n; ti++ {
				m.Tasks = append(m.Tasks, &types.Task{
					ID:          uuid.New(),
					MilestoneID: m.ID,
					Title:       fmt.Sprintf("Task %d.%d.%d", pi+1, mi+1, ti+1),
					Description: "task",
					OrderIndex:  ti,
				})
			}
			m.Resources = append(m.Resources, &types.Resource{
				ID:          uuid.New(),
				MilestoneID: m.ID,
				Title:       "Resource",
				Description: "resource",
				URL:         "https://example.com",
				Type:        plan.ResourceCourse,
				Cost:        "Free",
			})
			ph.Milestones = append(ph.Milestones, m)
		}
		p.Phases = append(p.Phases, ph)
	}
	return p
}

// CompleteTasks marks the first n tasks of m complete and refreshes the
// milestone's cached flag.
func CompleteTasks(m *types.Milestone, n int) {
	at := time.Now().UTC()
	for i, t := range m.Tasks {
		if i >= n {
			break
		}
		t.IsCompleted = true
		t.CompletedAt = &at
	}
	m.IsCompleted = plan.AllTasksCompleted(m.Tasks)
	if m.IsCompleted {
		m.CompletedAt = &at
	}
}
