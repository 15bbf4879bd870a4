package contact

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"profileplus/internal/profiles"
	"profileplus/internal/queue"
	"profileplus/internal/shared/metrics"
	"profileplus/internal/shared/telemetry"
)

var (
	ErrMissingFields = errors.New("All fields are required.")
	ErrInvalidEmail  = errors.New("Please enter a valid email address.")
)

// Request is a recruiter's message to a candidate.
type Request struct {
	RecruiterName string `json:"recruiterName"`
	Company       string `json:"company"`
	Email         string `json:"email"`
	Message       string `json:"message"`
}

// Validate checks that every field is present and the e-mail parses.
func (r Request) Validate() error {
	if r.RecruiterName == "" || r.Company == "" || r.Email == "" || r.Message == "" {
		return ErrMissingFields
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != strings.TrimSpace(r.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// Revealer records that a viewer may see a candidate's name.
type Revealer interface {
	Reveal(profileID string)
}

// Service accepts contact requests and forwards them to the notifier.
type Service struct {
	Notifier queue.Client
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(notifier queue.Client) *Service {
	if notifier == nil {
		notifier = queue.LogClient{}
	}
	return &Service{Notifier: notifier, now: time.Now}
}

// Submit validates req, reveals the candidate for the viewer and sends
// the notification. A failed send is logged and does not undo the reveal.
func (s *Service) Submit(ctx context.Context, candidate profiles.Profile, req Request, viewer Revealer, requestID string) error {
	if err := req.Validate(); err != nil {
		return err
	}
	viewer.Reveal(candidate.ID)
	metrics.IncContactRequests()

	msg := queue.Message{
		CandidateID:   candidate.ID,
		RecruiterName: req.RecruiterName,
		Company:       req.Company,
		Email:         req.Email,
		Body:          req.Message,
		RequestID:     requestID,
		SentAt:        s.now().UTC().Format(time.RFC3339),
		Version:       queue.MessageVersion,
	}
	if err := s.Notifier.Send(ctx, msg); err != nil {
		telemetry.Error("contact.notify_failed", map[string]any{
			"candidate_id": candidate.ID,
			"request_id":   requestID,
			"error":        err.Error(),
		})
	}
	return nil
}
