package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var emailTemplateFS embed.FS

type WelcomeEmail struct {
	FirstName string
	AppURL    string
}

type PlanReadyEmail struct {
	FirstName         string
	TargetCareer      string
	EstimatedDuration string
	PlanURL           string
}

type MilestoneEmail struct {
	FirstName      string
	MilestoneTitle string
	Progress       int
	NextMilestone  string
	PlanURL        string
}

type PhaseEmail struct {
	FirstName  string
	PhaseTitle string
	Progress   int
	NextPhase  string
	PlanURL    string
}

type ReminderEmail struct {
	FirstName        string
	Progress         int
	CurrentMilestone string
	NextTasks        []string
	DashboardURL     string
}

type RenderedEmail struct {
	Subject string
	Text    string
	HTML    string
}

// EmailRenderer renders every transactional email kind from the embedded
// templates. Each kind defines "<kind>", "<kind>_subject" (text) and
// "<kind>" (html).
type EmailRenderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewEmailRenderer() (*EmailRenderer, error) {
	txt, err := texttemplate.ParseFS(emailTemplateFS, "templates/email.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text email templates: %w", err)
	}
	html, err := htmltemplate.ParseFS(emailTemplateFS, "templates/email.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html email templates: %w", err)
	}
	return &EmailRenderer{html: html, text: txt}, nil
}

func (r *EmailRenderer) Render(kind string, data any) (RenderedEmail, error) {
	var out RenderedEmail
	if r == nil {
		return out, fmt.Errorf("email renderer not initialized")
	}
	var buf bytes.Buffer
	if err := r.text.ExecuteTemplate(&buf, kind+"_subject", data); err != nil {
		return out, fmt.Errorf("render %s subject: %w", kind, err)
	}
	out.Subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := r.text.ExecuteTemplate(&buf, kind, data); err != nil {
		return out, fmt.Errorf("render %s text: %w", kind, err)
	}
	out.Text = strings.TrimSpace(buf.String()) + "\n"

	buf.Reset()
	if err := r.html.ExecuteTemplate(&buf, kind, data); err != nil {
		return out, fmt.Errorf("render %s html: %w", kind, err)
	}
	out.HTML = strings.TrimSpace(buf.String())
	return out, nil
}
