package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/services"
)

// Publisher samples device location on a fixed interval while attached to an
// online session and publishes each sample twice: a TrackPoint appended to
// the session's track log and a location patch upserted into the presence
// directory. The two writes are independent — a failed presence upsert never
// blocks or rolls back the track append, and vice versa.
//
// The publisher runs only while attached. Paused or offline means no
// goroutine, no timer, no background sampling at all, so presence data can't
// look fresher than it is and the device battery isn't drained for nothing.
type Publisher struct {
	interval time.Duration
	sampler  Sampler
	tracks   *services.TrackService
	presence *services.PresenceService
	logger   *zap.Logger

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewPublisher(
	interval time.Duration,
	sampler Sampler,
	tracks *services.TrackService,
	presence *services.PresenceService,
	logger *zap.Logger,
) *Publisher {
	return &Publisher{
		interval: interval,
		sampler:  sampler,
		tracks:   tracks,
		presence: presence,
		logger:   logger,
	}
}

// Start attaches the publisher to a session and begins the sampling loop.
// Starting an already-running publisher is a no-op.
func (p *Publisher) Start(technicianID, sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.stop = make(chan struct{})
	p.running = true
	p.wg.Add(1)
	go p.loop(technicianID, sessionID, p.stop)

	p.logger.Info("location publisher started",
		zap.String("technician_id", technicianID),
		zap.String("session_id", sessionID),
		zap.Duration("interval", p.interval),
	)
}

// Stop detaches the publisher. An in-flight cycle is allowed to finish its
// writes, but no further cycle starts; Stop returns once the loop has
// exited. Stopping a stopped publisher is a no-op.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("location publisher stopped")
}

// Running reports whether the sampling loop is active.
func (p *Publisher) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// loop is the timer-driven sampling loop. Cancellation is checked at the top
// of every iteration — a pause or end-shift takes effect before the next
// tick, never mid-sample.
func (p *Publisher) loop(technicianID, sessionID string, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// Re-check before sampling: a Stop racing the tick wins.
			select {
			case <-stop:
				return
			default:
			}
			p.publishOnce(technicianID, sessionID)
		}
	}
}

// publishOnce takes one sample and issues the two publishes concurrently.
// Sampling failures are expected (tunnels, cold GPS) and silent per cycle;
// store failures are logged and surfaced nowhere else — a technician's shift
// survives transient backend errors.
func (p *Publisher) publishOnce(technicianID, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	point, err := p.sampler.Sample(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrSampleUnavailable) {
			p.logger.Debug("no location this cycle", zap.String("technician_id", technicianID))
		} else {
			p.logger.Warn("sampler failed", zap.Error(err))
		}
		return
	}

	capturedAt := time.Now()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		track := entities.NewTrackPoint(technicianID, sessionID, point, capturedAt)
		if err := p.tracks.Append(ctx, track); err != nil {
			p.logger.Warn("track append failed",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		loc := point
		_, err := p.presence.Upsert(ctx, technicianID, entities.PresencePatch{Location: &loc})
		if err != nil {
			p.logger.Warn("presence upsert failed",
				zap.String("technician_id", technicianID), zap.Error(err))
		}
	}()
	wg.Wait()
}
