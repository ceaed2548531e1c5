package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	base := NotFound("Plan.Get", "plan", "abc")
	wrapped := fmt.Errorf("load: %w", base)
	if !IsCode(wrapped, CodeNotFound) {
		t.Fatalf("expected not_found through fmt wrapping, got %q", CodeOf(wrapped))
	}
	if IsCode(wrapped, CodeValidation) {
		t.Fatalf("unexpected validation match")
	}
}

func TestGenerationFailedKeepsCause(t *testing.T) {
	last := Validation("Plan.Validate", "2 violations", nil)
	err := GenerationFailed("Plan.Generate", 3, last)
	if CodeOf(err) != CodeGenerationFailed {
		t.Fatalf("code = %q", CodeOf(err))
	}
	var inner *Error
	if !errors.As(errors.Unwrap(err), &inner) || inner.Code != CodeValidation {
		t.Fatalf("expected validation cause, got %v", errors.Unwrap(err))
	}
}

func TestErrorString(t *testing.T) {
	err := PreconditionFailed("Milestone.Complete", "1 of 3 tasks complete")
	want := "Milestone.Complete: 1 of 3 tasks complete (precondition_failed)"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no code")
	}
}
