package queue

import (
	"context"

	"profileplus/internal/shared/telemetry"
)

// LogClient records messages in the structured log instead of sending them.
type LogClient struct{}

func (LogClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	telemetry.Info("contact.notification", map[string]any{
		"candidate_id": msg.CandidateID,
		"company":      msg.Company,
		"request_id":   msg.RequestID,
		"version":      msg.Version,
	})
	return nil
}

var _ Client = LogClient{}
