package transfer

import (
	"context"
	"time"

	qstashx "github.com/tanpawarit/buildershub-receptionist/pkg/qstash"
)

type Outcome string

const (
	OutcomeTransferred Outcome = "transferred"
	OutcomeFailed      Outcome = "failed"
	OutcomeUnavailable Outcome = "unavailable"
)

type Event struct {
	CallID             string    `json:"call_id"`
	Outcome            Outcome   `json:"outcome"`
	Reason             string    `json:"reason"`
	SupervisorIdentity string    `json:"supervisor_identity,omitempty"`
	At                 time.Time `json:"at"`
}

// Notifier records transfer outcomes somewhere outside the call.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

const notifyTimeout = 5 * time.Second

func (s *Service) notify(ctx context.Context, callID string, outcome Outcome, reason, supervisor string) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	ev := Event{
		CallID:             callID,
		Outcome:            outcome,
		Reason:             reason,
		SupervisorIdentity: supervisor,
		At:                 s.now().UTC(),
	}
	if err := s.notifier.Notify(nctx, ev); err != nil {
		s.log().Warn().Err(err).Str("call_id", callID).Str("outcome", string(outcome)).Msg("transfer event not published")
	}
}

// QStashNotifier delivers events to a webhook through QStash.
type QStashNotifier struct {
	client      *qstashx.Client
	destination string
}

func NewQStashNotifier(client *qstashx.Client, destination string) *QStashNotifier {
	return &QStashNotifier{client: client, destination: destination}
}

func (n *QStashNotifier) Notify(ctx context.Context, ev Event) error {
	_, err := n.client.PublishJSON(ctx, n.destination, ev, map[string]string{
		"X-Call-Id": ev.CallID,
	})
	return err
}
