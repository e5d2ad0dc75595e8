package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

type fakePublisher struct {
	destination string
	dedup       string
	body        []byte
	err         error
}

func (f *fakePublisher) Publish(_ context.Context, destination string, body []byte, dedupID string) (string, error) {
	f.destination = destination
	f.body = body
	f.dedup = dedupID
	return "msg_1", f.err
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, contractx.Notification) error {
	r.calls++
	return r.err
}

func sampleNotification() contractx.Notification {
	return contractx.Notification{
		ConversationID:   "conv-1",
		DecisionID:       "dec-1",
		TeamID:           "team-1",
		ClientID:         "client-1",
		Priority:         "high",
		NotificationType: "new_decision",
		SentAt:           time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestNATSNotifyPublishesOnTeamSubject(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	n := NewNATS(conn, "")
	if err := n.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if conn.subject != "screening.decisions.team-1.new_decision" {
		t.Fatalf("subject = %q", conn.subject)
	}

	var got contractx.Notification
	if err := json.Unmarshal(conn.data, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.DecisionID != "dec-1" {
		t.Fatalf("decision_id = %q, want dec-1", got.DecisionID)
	}
}

func TestNATSNotifyWrapsPublishError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("no responders")
	n := NewNATS(&fakeConn{err: sentinel}, "alerts")
	if err := n.Notify(context.Background(), sampleNotification()); !errors.Is(err, sentinel) {
		t.Fatalf("Notify() error = %v, want %v", err, sentinel)
	}
}

func TestQStashNotifyUsesDedupKey(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := NewQStash(pub, "recruiters")
	if err := n.Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if pub.destination != "recruiters" {
		t.Fatalf("destination = %q", pub.destination)
	}
	if pub.dedup != "dec-1:new_decision" {
		t.Fatalf("dedup = %q", pub.dedup)
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("down")
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: sentinel}
	f := Fanout{ok, nil, bad}

	err := f.Notify(context.Background(), sampleNotification())
	if !errors.Is(err, sentinel) {
		t.Fatalf("Notify() error = %v, want %v", err, sentinel)
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", ok.calls, bad.calls)
	}
}

func TestNoopNotify(t *testing.T) {
	t.Parallel()

	if err := (Noop{}).Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
}
