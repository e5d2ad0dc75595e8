package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

// Publisher is the subset of the QStash client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, destination string, body []byte, dedupID string) (string, error)
}

// QStash enqueues notifications on an Upstash QStash destination.
type QStash struct {
	client      Publisher
	destination string
}

var _ contractx.Notifier = (*QStash)(nil)

func NewQStash(client Publisher, destination string) *QStash {
	return &QStash{client: client, destination: destination}
}

func (q *QStash) Notify(ctx context.Context, n contractx.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: encode notification: %w", err)
	}

	// Retried deliveries of the same decision collapse on the QStash side.
	messageID, err := q.client.Publish(ctx, q.destination, body, n.DecisionID+":"+n.NotificationType)
	telemetryx.RecordNotification("qstash", err == nil)
	if err != nil {
		return fmt.Errorf("notify: qstash publish: %w", err)
	}

	log.Debug().
		Str("decision_id", n.DecisionID).
		Str("message_id", messageID).
		Msg("recruiter notification queued")
	return nil
}
