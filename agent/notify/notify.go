// Package notify delivers recruiter notifications for newly created decisions.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

// Noop only logs. It is the default when no transport is configured.
type Noop struct{}

var _ contractx.Notifier = Noop{}

func (Noop) Notify(_ context.Context, n contractx.Notification) error {
	log.Info().
		Str("conversation_id", n.ConversationID).
		Str("decision_id", n.DecisionID).
		Str("team_id", n.TeamID).
		Str("notification_type", n.NotificationType).
		Msg("recruiter notification (noop transport)")
	telemetryx.RecordNotification("noop", true)
	return nil
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []contractx.Notifier

func (f Fanout) Notify(ctx context.Context, n contractx.Notification) error {
	var errs []error
	for _, target := range f {
		if target == nil {
			continue
		}
		if err := target.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
