package services

import (
	"fmt"
	"strings"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	"github.com/yungbote/careerbridge-backend/internal/platform/promptstyle"
)

// IntakeOpeningMessage seeds every new intake conversation.
const IntakeOpeningMessage = `Hi! I'm here to learn about your career goals so we can create your personalized plan. Let's start with the most important question:

**What career are you interested in transitioning to?**`

// intakeSystemPrompt keeps the advisor gathering information; the plan
// itself comes from generation, not from chat.
func intakeSystemPrompt(p *types.UserProfile) string {
	var b strings.Builder
	b.WriteString(`You are a career transition advisor. Have a focused conversation to GATHER INFORMATION ONLY; do not write the plan.

Goals:
1. Understand their current situation and background
2. Identify their target career and why they want it
3. Assess their constraints (time, money, location, barriers)
4. Learn their learning style and preferences
5. Uncover specific concerns or requirements

Rules:
- Ask ONE focused question at a time and keep replies to 2-4 sentences.
- Do not produce week-by-week schedules, course lists or resource lists.
- If asked for resources, say they will be included when the plan is generated.
- After roughly 8-10 meaningful exchanges, tell them they are ready to generate their plan.
`)
	if p != nil {
		b.WriteString("\nUser profile:\n")
		fmt.Fprintf(&b, "Name: %s %s\n", p.FirstName, p.LastName)
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
		fmt.Fprintf(&b, "Employment status: %s\n", p.CurrentEmploymentStatus)
		if p.CurrentJobTitle != "" {
			fmt.Fprintf(&b, "Current/recent job: %s\n", p.CurrentJobTitle)
		}
		if p.CurrentIndustry != "" {
			fmt.Fprintf(&b, "Industry: %s\n", p.CurrentIndustry)
		}
		if p.YearsOfExperience != nil {
			fmt.Fprintf(&b, "Years of experience: %d\n", *p.YearsOfExperience)
		}
		fmt.Fprintf(&b, "Education: %s\n", p.EducationLevel)
		fmt.Fprintf(&b, "Available hours/week: %d\n", p.AvailableHoursPerWeek)
		fmt.Fprintf(&b, "Financial situation: %s\n", p.FinancialSituation)
		fmt.Fprintf(&b, "Learning preference: %s\n", p.LearningPreference)
	}
	return promptstyle.ApplySystem(b.String(), "text")
}

func advisorUserPrompt(transcript string) string {
	return "Conversation so far:\n\n" + transcript + "\n\nContinue the conversation naturally. Your next response:"
}
