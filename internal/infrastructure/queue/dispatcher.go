package queue

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/core/domain"
	"github.com/controlsys/defect-web/internal/core/ports"
	"github.com/controlsys/defect-web/pkg/logger"
)

const (
	defaultWorkers = 2
	channelBuffer  = 64
)

// Dispatcher delivers confirmation mails on a fixed set of workers, sharded
// by recipient so mails to one address go out in the order they were queued.
type Dispatcher struct {
	workers []chan domain.ConfirmationMail
	sender  ports.MailSender
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.MailSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ConfirmationMail, numWorkers),
		sender:  sender,
		log:     logger.Component(log, "mail_dispatcher"),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ConfirmationMail, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx is passed to the sender;
// cancelling it abandons queued mails, so callers normally Stop first.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(len(d.workers))
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a mail to the worker responsible for its recipient.
// The call blocks once that worker's buffer is full. Mails enqueued after
// Stop are dropped.
func (d *Dispatcher) Enqueue(mail domain.ConfirmationMail) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.log.Warn().Str("to", mail.To).Msg("dispatcher stopped, confirmation mail dropped")
		return
	}
	d.workers[d.shardIndex(mail.To)] <- mail
}

// Stop closes the queues and waits until every queued mail has been handed
// to the sender. It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(to)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ConfirmationMail) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case mail, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, mail); err != nil {
				d.log.Error().Err(err).
					Str("to", mail.To).
					Int("worker_id", id).
					Msg("confirmation mail failed")
			}
		}
	}
}
