package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/user"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

const (
	maxNameLength     = 50
	maxLocationLength = 100
	maxTitleLength    = 100
	maxYearsOfWork    = 70
)

type ProfileService interface {
	Get(ctx context.Context) (*types.UserProfile, error)
	Upsert(ctx context.Context, in ProfileInput) (*types.UserProfile, error)
}

type ProfileInput struct {
	FirstName               string   `json:"first_name"`
	LastName                string   `json:"last_name"`
	Location                string   `json:"location"`
	PhoneNumber             string   `json:"phone_number"`
	IsKansasResident        bool     `json:"is_kansas_resident"`
	CurrentEmploymentStatus string   `json:"current_employment_status"`
	CurrentJobTitle         string   `json:"current_job_title"`
	CurrentIndustry         string   `json:"current_industry"`
	YearsOfExperience       *int     `json:"years_of_experience"`
	EducationLevel          string   `json:"education_level"`
	AvailableHoursPerWeek   int      `json:"available_hours_per_week"`
	WillingToRelocate       bool     `json:"willing_to_relocate"`
	HasTransportation       bool     `json:"has_transportation"`
	FinancialSituation      string   `json:"financial_situation"`
	LearningPreference      string   `json:"learning_preference"`
	Barriers                []string `json:"barriers"`
}

type profileService struct {
	log      *logger.Logger
	profiles repos.UserProfileRepo
	users    repos.UserRepo
}

func NewProfileService(log *logger.Logger, profiles repos.UserProfileRepo, users repos.UserRepo) ProfileService {
	return &profileService{
		log:      log.With("service", "ProfileService"),
		profiles: profiles,
		users:    users,
	}
}

func (s *profileService) Get(ctx context.Context) (*types.UserProfile, error) {
	const op = "Profile.Get"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil {
		return nil, domainagg.NotFound(op, "profile", userID)
	}
	return p, nil
}

func (s *profileService) Upsert(ctx context.Context, in ProfileInput) (*types.UserProfile, error) {
	const op = "Profile.Upsert"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	in = normalizeProfileInput(in)
	if problems := ValidateProfile(in); len(problems) > 0 {
		return nil, domainagg.Validation(op, strings.Join(problems, "; "), nil)
	}

	row := &types.UserProfile{
		UserID:                  userID,
		FirstName:               in.FirstName,
		LastName:                in.LastName,
		Location:                in.Location,
		PhoneNumber:             in.PhoneNumber,
		IsKansasResident:        in.IsKansasResident,
		CurrentEmploymentStatus: in.CurrentEmploymentStatus,
		CurrentJobTitle:         in.CurrentJobTitle,
		CurrentIndustry:         in.CurrentIndustry,
		YearsOfExperience:       in.YearsOfExperience,
		EducationLevel:          in.EducationLevel,
		AvailableHoursPerWeek:   in.AvailableHoursPerWeek,
		WillingToRelocate:       in.WillingToRelocate,
		HasTransportation:       in.HasTransportation,
		FinancialSituation:      in.FinancialSituation,
		LearningPreference:      in.LearningPreference,
		Barriers:                datatypes.JSONSlice[string](in.Barriers),
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.profiles.Upsert(dbc, row); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if s.users != nil {
		if err := s.users.UpdateName(dbc, userID, in.FirstName, in.LastName); err != nil {
			s.log.Warn("sync account name failed", "user_id", userID, "error", err)
		}
	}
	return row, nil
}

func normalizeProfileInput(in ProfileInput) ProfileInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Location = strings.TrimSpace(in.Location)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.CurrentEmploymentStatus = strings.ToLower(strings.TrimSpace(in.CurrentEmploymentStatus))
	in.CurrentJobTitle = strings.TrimSpace(in.CurrentJobTitle)
	in.CurrentIndustry = strings.TrimSpace(in.CurrentIndustry)
	in.EducationLevel = strings.ToLower(strings.TrimSpace(in.EducationLevel))
	in.FinancialSituation = strings.ToLower(strings.TrimSpace(in.FinancialSituation))
	in.LearningPreference = strings.ToLower(strings.TrimSpace(in.LearningPreference))
	barriers := make([]string, 0, len(in.Barriers))
	for _, b := range in.Barriers {
		if b = strings.TrimSpace(b); b != "" {
			barriers = append(barriers, b)
		}
	}
	in.Barriers = barriers
	return in
}

// ValidateProfile returns one message per invalid field, in field order.
func ValidateProfile(in ProfileInput) []string {
	var out []string
	required := func(field, v string, max int) {
		switch {
		case v == "":
			out = append(out, field+" is required")
		case len(v) > max:
			out = append(out, fmt.Sprintf("%s must be at most %d characters", field, max))
		}
	}
	optional := func(field, v string, max int) {
		if len(v) > max {
			out = append(out, fmt.Sprintf("%s must be at most %d characters", field, max))
		}
	}
	oneOf := func(field, v string, allowed []string) {
		if !slices.Contains(allowed, v) {
			out = append(out, fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")))
		}
	}

	required("first_name", in.FirstName, maxNameLength)
	required("last_name", in.LastName, maxNameLength)
	required("location", in.Location, maxLocationLength)
	oneOf("current_employment_status", in.CurrentEmploymentStatus, user.EmploymentStatuses)
	optional("current_job_title", in.CurrentJobTitle, maxTitleLength)
	optional("current_industry", in.CurrentIndustry, maxTitleLength)
	if y := in.YearsOfExperience; y != nil && (*y < 0 || *y > maxYearsOfWork) {
		out = append(out, fmt.Sprintf("years_of_experience must be between 0 and %d", maxYearsOfWork))
	}
	oneOf("education_level", in.EducationLevel, user.EducationLevels)
	if h := in.AvailableHoursPerWeek; h < user.MinHoursPerWeek || h > user.MaxHoursPerWeek {
		out = append(out, fmt.Sprintf("available_hours_per_week must be between %d and %d", user.MinHoursPerWeek, user.MaxHoursPerWeek))
	}
	oneOf("financial_situation", in.FinancialSituation, user.FinancialSituations)
	oneOf("learning_preference", in.LearningPreference, user.LearningPreferences)
	return out
}
