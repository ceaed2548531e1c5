package planning

import (
	"context"
	"testing"
)

func TestPatternExtractor(t *testing.T) {
	e := NewPatternExtractor(DefaultPolicy())
	cases := []struct {
		name string
		msgs []string
		want string
	}{
		{
			name: "want to become",
			msgs: []string{"Hi! I want to become a data analyst. I manage a store now."},
			want: "data analyst",
		},
		{
			name: "interested in",
			msgs: []string{"I'm interested in becoming an electrician, ideally soon"},
			want: "electrician",
		},
		{
			name: "transition to",
			msgs: []string{"hello", "I would like to transition to software engineering"},
			want: "software engineering",
		},
		{
			name: "career in",
			msgs: []string{"Looking for a career in nursing."},
			want: "nursing",
		},
		{
			name: "case insensitive",
			msgs: []string{"I Want To Be A Welder."},
			want: "Welder",
		},
		{
			name: "first pattern wins",
			msgs: []string{"I want to become a teacher, or maybe a career in law."},
			want: "teacher",
		},
		{
			name: "no match",
			msgs: []string{"I'm not sure what I want yet."},
			want: "new career",
		},
		{
			name: "no messages",
			msgs: nil,
			want: "new career",
		},
		{
			name: "outside window",
			msgs: []string{"hi", "hello", "hey", "I want to become a pilot."},
			want: "new career",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), tc.msgs)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPatternExtractorNilPolicy(t *testing.T) {
	got, err := NewPatternExtractor(nil).Extract(context.Background(), []string{"career in plumbing"})
	if err != nil || got != "plumbing" {
		t.Fatalf("got %q, %v", got, err)
	}
}
