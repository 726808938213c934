package power

import (
	"context"
	"sync"
	"time"

	"github.com/777genius/audioswitch/internal/logging"
)

const defaultPollInterval = 5 * time.Second

// Poller turns a StatusReader into a Source by checking at a fixed cadence.
// It emits the status read right after Start and then on every change.
type Poller struct {
	name     string
	reader   StatusReader
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a polling source
func NewPoller(name string, reader StatusReader, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{name: name, reader: reader, interval: interval}
}

// Name returns the source name
func (p *Poller) Name() string { return p.name }

// ReadStatus checks the status directly
func (p *Poller) ReadStatus(ctx context.Context) (Status, error) {
	return p.reader.ReadStatus(ctx)
}

// Start launches the polling goroutine
func (p *Poller) Start(ctx context.Context, events chan<- Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(ctx, events)
	}()

	logging.Debug("Power poller started: source=%s interval=%s", p.name, p.interval)
	return nil
}

// Stop cancels polling and waits for the goroutine to exit
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	logging.Debug("Power poller stopped: source=%s", p.name)
}

func (p *Poller) loop(ctx context.Context, events chan<- Event) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := StatusUnknown
	first := true

	for {
		status, err := p.reader.ReadStatus(ctx)
		if err != nil {
			logging.Warn("Power status poll failed: source=%s err=%v", p.name, err)
		} else if status != StatusUnknown && (first || status != last) {
			first = false
			last = status
			select {
			case events <- Event{Status: status, Source: p.name, At: time.Now()}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
