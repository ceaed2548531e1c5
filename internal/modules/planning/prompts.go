package planning

import (
	"fmt"
	"strings"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/platform/promptstyle"
)

type PromptInput struct {
	Profile       *types.UserProfile
	Transcript    string
	CurrentCareer string
	TargetCareer  string
	Limits        Limits
}

// BuildTranscript renders messages as "User: ..." / "Assistant: ..." blocks
// separated by a blank line.
func BuildTranscript(msgs []*types.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		speaker := "Assistant"
		if m.Role == chat.RoleUser {
			speaker = "User"
		}
		parts = append(parts, speaker+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}

func cardinalityRules(l Limits) string {
	return fmt.Sprintf(`- Create %d-%d phases (minimum %d)
- EACH phase needs %d-%d milestones (minimum %d)
- EACH milestone needs %d-%d tasks (minimum %d)
- EACH milestone needs AT LEAST %d resource(s)
- orderIndex starts at 0 and increases by 1 within each list`,
		l.MinPhases, l.MaxPhases, l.MinPhases,
		l.MinMilestones, l.MaxMilestones, l.MinMilestones,
		l.MinTasks, l.MaxTasks, l.MinTasks,
		l.MinResources)
}

func SystemPrompt(in PromptInput) string {
	p := in.Profile
	if p == nil {
		p = &types.UserProfile{}
	}
	current := strings.TrimSpace(in.CurrentCareer)
	if current == "" {
		current = "Not specified"
	}

	var b strings.Builder
	b.WriteString("You are an expert career transition planner. Generate a realistic, actionable career transition plan.\n\n")
	b.WriteString("User context:\n")
	fmt.Fprintf(&b, "Name: %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(&b, "Location: %s\n", p.Location)
	fmt.Fprintf(&b, "Current status: %s\n", p.CurrentEmploymentStatus)
	fmt.Fprintf(&b, "Current career: %s\n", current)
	fmt.Fprintf(&b, "Target career: %s\n", in.TargetCareer)
	fmt.Fprintf(&b, "Available hours/week: %d\n", p.AvailableHoursPerWeek)
	fmt.Fprintf(&b, "Financial situation: %s\n", p.FinancialSituation)
	fmt.Fprintf(&b, "Education level: %s\n", p.EducationLevel)
	fmt.Fprintf(&b, "Learning preference: %s\n", p.LearningPreference)
	fmt.Fprintf(&b, "Willing to relocate: %s\n", yesNo(p.WillingToRelocate))
	fmt.Fprintf(&b, "Has transportation: %s\n", yesNo(p.HasTransportation))
	if len(p.Barriers) > 0 {
		fmt.Fprintf(&b, "Barriers: %s\n", strings.Join(p.Barriers, ", "))
	}

	b.WriteString("\nConversation summary:\n")
	b.WriteString(in.Transcript)

	b.WriteString("\n\nValidation rules (the plan is rejected otherwise):\n")
	b.WriteString(cardinalityRules(in.Limits))

	b.WriteString("\n\nTasks start with a verb and name a concrete deliverable.")
	b.WriteString("\nResources need a real URL, an exact cost (\"Free\", \"$49/month\"), a duration and a location of online, in_person or hybrid.")
	switch p.FinancialSituation {
	case "needs_free_only", "needs_assistance":
		b.WriteString("\nPrefer free or subsidized resources and mention workforce assistance programs.")
	}
	if p.IsKansasResident {
		b.WriteString("\nPrioritize Kansas programs, salary ranges and job market data.")
	}
	fmt.Fprintf(&b, "\nBase the timeline on %d hours per week and format durations like \"2-3 months\".", p.AvailableHoursPerWeek)

	return promptstyle.ApplySystem(b.String(), "json")
}

// UserPrompt builds the per-attempt instruction. Attempts after the first
// carry the retry note and the violations from the previous candidate.
func UserPrompt(in PromptInput, attempt int, retryNote string, prev []Violation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a comprehensive career transition plan from %q to %q.\n\n", orDefault(in.CurrentCareer, "current situation"), in.TargetCareer)
	b.WriteString("CRITICAL REQUIREMENTS (plan will be rejected if not met):\n")
	b.WriteString(cardinalityRules(in.Limits))
	if in.Profile != nil {
		fmt.Fprintf(&b, "\n\nUse realistic timelines based on %d hours/week availability.", in.Profile.AvailableHoursPerWeek)
	}
	if attempt > 1 {
		if strings.TrimSpace(retryNote) != "" {
			b.WriteString("\n\n" + strings.TrimSpace(retryNote))
		}
		if len(prev) > 0 {
			b.WriteString("\nProblems found in the previous attempt:")
			for i, v := range prev {
				if i == 10 {
					fmt.Fprintf(&b, "\n- ...and %d more", len(prev)-i)
					break
				}
				b.WriteString("\n- " + v.String())
			}
		}
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
