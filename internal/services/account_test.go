package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/user"
	"github.com/yungbote/careerbridge-backend/internal/platform/apierr"
	"github.com/yungbote/careerbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

func newTestAuth(t *testing.T, users *fakeUserRepo, notify NotificationService) AuthService {
	t.Helper()
	svc, err := NewAuthService(logger.Nop(), users, notify, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	if _, err := NewAuthService(logger.Nop(), newFakeUserRepo(), nil, "  ", 0); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuth(t, newFakeUserRepo(), nil)
	cases := []struct {
		name string
		in   RegisterInput
		want string
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "longenough", FirstName: "A", LastName: "B"}, "email is invalid"},
		{"short password", RegisterInput{Email: "a@b.co", Password: "short", FirstName: "A", LastName: "B"}, "password must be at least 8"},
		{"missing names", RegisterInput{Email: "a@b.co", Password: "longenough"}, "first_name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			if !domainagg.IsCode(err, domainagg.CodeValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	notify := &recordingNotifier{}
	svc := newTestAuth(t, users, notify)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "  Dana@Example.com ", Password: "hunter2hunter2", FirstName: "Dana", LastName: "Reyes"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "dana@example.com" || u.Password == "hunter2hunter2" {
		t.Fatalf("stored user: email=%q hashed=%v", u.Email, u.Password != "hunter2hunter2")
	}
	if len(notify.welcomed) != 1 || notify.welcomed[0].ID != u.ID {
		t.Fatalf("welcome not sent: %+v", notify.welcomed)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "dana@example.com", Password: "another-pass", FirstName: "D", LastName: "R"}); !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("duplicate register err = %v", err)
	}

	token, err := svc.Login(ctx, "DANA@example.com", "hunter2hunter2")
	if err != nil || token == "" {
		t.Fatalf("Login: token=%q err=%v", token, err)
	}
	authedCtx, err := svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if got := ctxutil.GetRequestData(authedCtx); got == nil || got.UserID != u.ID {
		t.Fatalf("request data = %+v, want user %s", got, u.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuth(t, newFakeUserRepo(), nil)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "correct-horse", FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, tc := range []struct{ email, password string }{
		{"a@b.co", "wrong-horse"},
		{"missing@b.co", "correct-horse"},
	} {
		_, err := svc.Login(ctx, tc.email, tc.password)
		var ae *apierr.Error
		if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
			t.Fatalf("Login(%q) err = %v, want 401", tc.email, err)
		}
	}
}

func TestSetContextFromTokenRejectsForeignSignature(t *testing.T) {
	users := newFakeUserRepo()
	other, err := NewAuthService(logger.Nop(), users, nil, "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	ctx := context.Background()
	if _, err := other.Register(ctx, RegisterInput{Email: "a@b.co", Password: "correct-horse", FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := other.Login(ctx, "a@b.co", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := newTestAuth(t, users, nil).SetContextFromToken(ctx, token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func validProfileInput() ProfileInput {
	years := 4
	return ProfileInput{
		FirstName:               "Dana",
		LastName:                "Reyes",
		Location:                "Wichita, KS",
		CurrentEmploymentStatus: "employed",
		YearsOfExperience:       &years,
		EducationLevel:          "some_college",
		AvailableHoursPerWeek:   10,
		FinancialSituation:      "needs_free_only",
		LearningPreference:      "online",
	}
}

func TestValidateProfile(t *testing.T) {
	tooMany := 71
	cases := []struct {
		name   string
		mutate func(*ProfileInput)
		want   string
	}{
		{"valid", func(*ProfileInput) {}, ""},
		{"first name", func(in *ProfileInput) { in.FirstName = "" }, "first_name is required"},
		{"long last name", func(in *ProfileInput) { in.LastName = strings.Repeat("x", 51) }, "last_name must be at most 50 characters"},
		{"long location", func(in *ProfileInput) { in.Location = strings.Repeat("x", 101) }, "location must be at most 100 characters"},
		{"employment", func(in *ProfileInput) { in.CurrentEmploymentStatus = "retired" }, "current_employment_status must be one of"},
		{"years", func(in *ProfileInput) { in.YearsOfExperience = &tooMany }, "years_of_experience must be between 0 and 70"},
		{"zero hours", func(in *ProfileInput) { in.AvailableHoursPerWeek = 0 }, "available_hours_per_week must be between 1 and 168"},
		{"too many hours", func(in *ProfileInput) { in.AvailableHoursPerWeek = 169 }, "available_hours_per_week must be between 1 and 168"},
		{"learning", func(in *ProfileInput) { in.LearningPreference = "osmosis" }, "learning_preference must be one of"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProfileInput()
			tc.mutate(&in)
			got := ValidateProfile(in)
			if tc.want == "" {
				if len(got) != 0 {
					t.Fatalf("unexpected problems: %v", got)
				}
				return
			}
			if len(got) != 1 || !strings.HasPrefix(got[0], tc.want) {
				t.Fatalf("problems = %v, want %q", got, tc.want)
			}
		})
	}
}

func TestProfileUpsertNormalizesAndSyncsName(t *testing.T) {
	userID := uuid.New()
	profiles := &fakeProfileRepo{byUser: map[uuid.UUID]*types.UserProfile{}}
	users := newFakeUserRepo(&types.User{ID: userID, Email: "a@b.co"})
	svc := NewProfileService(logger.Nop(), profiles, users)
	ctx := authed(userID)

	if _, err := svc.Get(ctx); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("Get before upsert err = %v", err)
	}

	in := validProfileInput()
	in.FirstName = "  Dana "
	in.EducationLevel = " Some_College"
	in.Barriers = []string{"childcare", "  ", "transportation"}
	got, err := svc.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got.FirstName != "Dana" || got.EducationLevel != "some_college" || len(got.Barriers) != 2 {
		t.Fatalf("profile not normalized: %+v", got)
	}
	if users.renamed[userID] != "Dana Reyes" {
		t.Fatalf("account name = %q", users.renamed[userID])
	}
	if _, err := svc.Get(ctx); err != nil {
		t.Fatalf("Get after upsert: %v", err)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	svc := NewProfileService(logger.Nop(), &fakeProfileRepo{byUser: map[uuid.UUID]*types.UserProfile{}}, nil)
	_, err := svc.Get(context.Background())
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestPreferences(t *testing.T) {
	userID := uuid.New()
	repo := &fakePrefRepo{byUser: map[uuid.UUID]*types.NotificationPreference{}}
	svc := NewPreferenceService(logger.Nop(), repo)
	ctx := authed(userID)

	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.EmailReminders || !got.MilestoneEmails || got.MarketingEmails || got.ReminderFrequency != user.ReminderWeekly {
		t.Fatalf("defaults = %+v", got)
	}

	if _, err := svc.Update(ctx, PreferenceInput{ReminderFrequency: "hourly"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("invalid frequency err = %v", err)
	}

	updated, err := svc.Update(ctx, PreferenceInput{EmailReminders: false, ReminderFrequency: " Biweekly ", MilestoneEmails: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ReminderFrequency != user.ReminderBiweekly || updated.EmailReminders {
		t.Fatalf("updated = %+v", updated)
	}
	if repo.byUser[userID] != updated {
		t.Fatalf("preferences not persisted")
	}
}
