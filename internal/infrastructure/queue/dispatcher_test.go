package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controlsys/defect-web/internal/core/domain"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []domain.ConfirmationMail
	fail  string
	calls int
}

func (s *recordingSender) Send(_ context.Context, mail domain.ConfirmationMail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if mail.To == s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, mail)
	return nil
}

func (s *recordingSender) snapshot() ([]domain.ConfirmationMail, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ConfirmationMail(nil), s.sent...), s.calls
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(4, &recordingSender{}, zerolog.Nop())

	assert.Len(t, d.workers, 4)
	assert.Equal(t, d.shardIndex("Bob@Example.com"), d.shardIndex("bob@example.com"))
	for _, to := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		idx := d.shardIndex(to)
		assert.True(t, idx >= 0 && idx < 4)
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingSender{}, zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)
}

func TestDispatcher_DeliversInOrderPerRecipient(t *testing.T) {
	sender := &recordingSender{fail: "broken@x.io"}
	d := NewDispatcher(3, sender, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	links := []string{"l1", "l2", "l3", "l4"}
	for _, l := range links {
		d.Enqueue(domain.ConfirmationMail{To: "bob@x.io", Link: l})
	}
	d.Enqueue(domain.ConfirmationMail{To: "broken@x.io", Link: "lost"})
	d.Enqueue(domain.ConfirmationMail{To: "amy@x.io", Link: "a1"})

	require.Eventually(t, func() bool {
		_, calls := sender.snapshot()
		return calls == 6
	}, time.Second, 5*time.Millisecond)

	sent, _ := sender.snapshot()
	var bob []string
	for _, m := range sent {
		if m.To == "bob@x.io" {
			bob = append(bob, m.Link)
		}
	}
	assert.Equal(t, links, bob)
	assert.Len(t, sent, 5, "the failed mail is logged and dropped")
}

// gatedSender holds every send until release is closed.
type gatedSender struct {
	recordingSender
	release chan struct{}
}

func (s *gatedSender) Send(ctx context.Context, mail domain.ConfirmationMail) error {
	<-s.release
	return s.recordingSender.Send(ctx, mail)
}

func TestDispatcher_StopDrainsQueuedMails(t *testing.T) {
	sender := &gatedSender{release: make(chan struct{})}
	d := NewDispatcher(2, sender, zerolog.Nop())
	d.Start(context.Background())

	for _, to := range []string{"a@x.io", "b@x.io", "c@x.io", "a@x.io"} {
		d.Enqueue(domain.ConfirmationMail{To: to, Link: "l"})
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before queued mails were sent")
	case <-time.After(20 * time.Millisecond):
	}

	close(sender.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	sent, _ := sender.snapshot()
	assert.Len(t, sent, 4)

	d.Enqueue(domain.ConfirmationMail{To: "late@x.io"})
	d.Stop()
	sent, _ = sender.snapshot()
	assert.Len(t, sent, 4, "mails after Stop are dropped")
}
