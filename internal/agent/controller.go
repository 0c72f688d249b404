package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fieldtrack/internal/clientstate"
	"fieldtrack/internal/domain/entities"
	"fieldtrack/internal/services"
)

// Phase is the controller's client-side state.
type Phase string

const (
	PhaseOffline Phase = "offline"
	PhaseOnline  Phase = "online"
	PhasePaused  Phase = "paused"
)

// phaseTransitions defines the allowed phase changes. The map IS the state
// machine: Offline → Online → Paused → Online → … → Offline, with Offline
// re-enterable from both active phases.
var phaseTransitions = map[Phase][]Phase{
	PhaseOffline: {PhaseOnline},
	PhaseOnline:  {PhasePaused, PhaseOffline},
	PhasePaused:  {PhaseOnline, PhaseOffline},
}

func canTransition(from, to Phase) bool {
	for _, allowed := range phaseTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Controller is the client-resident session state machine. Every transition
// persists the controller's state to the device's client-state store before
// returning, so a process or page restart resumes the shift exactly as left
// — same phase, same session — instead of minting a new session or silently
// dropping the shift.
type Controller struct {
	mu           sync.Mutex
	phase        Phase
	technicianID string
	session      *entities.Session

	states    clientstate.Store
	sessions  *services.SessionService
	publisher *Publisher
	logger    *zap.Logger

	displayName     string
	affiliationName string
}

// NewController creates a controller in the Offline phase. technicianID may
// be empty when the device starts before login completes; state is then
// keyed under the anonymous slot until SetIdentity is called.
func NewController(
	states clientstate.Store,
	sessions *services.SessionService,
	publisher *Publisher,
	technicianID, displayName, affiliationName string,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		phase:           PhaseOffline,
		technicianID:    technicianID,
		states:          states,
		sessions:        sessions,
		publisher:       publisher,
		logger:          logger,
		displayName:     displayName,
		affiliationName: affiliationName,
	}
}

// stateKey returns the client-state slot for the current identity.
func (c *Controller) stateKey() string {
	if c.technicianID == "" {
		return clientstate.AnonymousKey
	}
	return c.technicianID
}

// publishAs returns the identity published to the backend. Before login the
// device publishes under the anonymous identity; SetIdentity re-keys it.
func (c *Controller) publishAs() string {
	return c.stateKey()
}

// Restore re-establishes the controller from persisted client state after a
// restart. With tracking enabled it re-attaches to the persisted session —
// the same sessionId, not a new one — and resumes in Online or Paused
// exactly as left. A persisted session that no longer exists or was closed
// elsewhere (superseded by another go-online) resets the device to Offline.
func (c *Controller) Restore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok, err := c.states.Load(ctx, c.stateKey())
	if err != nil {
		return err
	}
	if !ok || !state.Enabled {
		c.phase = PhaseOffline
		return nil
	}

	session, err := c.sessions.Get(ctx, state.SessionID)
	if err != nil || !session.Open() {
		c.logger.Warn("persisted session no longer open, resetting",
			zap.String("session_id", state.SessionID))
		c.phase = PhaseOffline
		return c.states.Clear(ctx, c.stateKey())
	}

	c.session = session
	if state.Paused {
		c.phase = PhasePaused
	} else {
		c.phase = PhaseOnline
		c.publisher.Start(c.publishAs(), session.ID)
	}

	c.logger.Info("restored tracking session",
		zap.String("session_id", session.ID),
		zap.String("phase", string(c.phase)),
	)
	return nil
}

// GoOnline opens a shift and starts publishing. Calling it while already
// Online or Paused is a no-op: the controller never holds two open sessions
// for one technician. Any stale open session left by a crash is superseded
// store-side when the new one opens.
func (c *Controller) GoOnline(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseOffline {
		return nil
	}

	session, err := c.sessions.Open(ctx, c.publishAs(), c.displayName, c.affiliationName)
	if err != nil {
		return fmt.Errorf("go online: %w", err)
	}

	if err := c.states.Save(ctx, c.stateKey(), clientstate.State{
		Enabled:   true,
		Paused:    false,
		SessionID: session.ID,
	}); err != nil {
		return err
	}

	c.session = session
	c.phase = PhaseOnline
	c.publisher.Start(c.publishAs(), session.ID)
	return nil
}

// Pause suspends sampling without ending the shift. Presence keeps the last
// known location; the publisher stops entirely.
func (c *Controller) Pause(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !canTransition(c.phase, PhasePaused) {
		return fmt.Errorf("%w: cannot pause from %s", entities.ErrInvalidStateTransition, c.phase)
	}

	c.publisher.Stop()

	if err := c.states.Save(ctx, c.stateKey(), clientstate.State{
		Enabled:   true,
		Paused:    true,
		SessionID: c.session.ID,
	}); err != nil {
		return err
	}
	if err := c.sessions.Pause(ctx, c.publishAs()); err != nil {
		return err
	}

	c.phase = PhasePaused
	return nil
}

// Resume restarts sampling on the same session.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePaused {
		return fmt.Errorf("%w: cannot resume from %s", entities.ErrInvalidStateTransition, c.phase)
	}

	if err := c.states.Save(ctx, c.stateKey(), clientstate.State{
		Enabled:   true,
		Paused:    false,
		SessionID: c.session.ID,
	}); err != nil {
		return err
	}
	if err := c.sessions.Resume(ctx, c.publishAs()); err != nil {
		return err
	}

	c.phase = PhaseOnline
	c.publisher.Start(c.publishAs(), c.session.ID)
	return nil
}

// EndShift closes the session, marks presence offline, and clears persisted
// client state. Safe to call from any phase, including with a sampling cycle
// in flight — the in-flight write completes, no further cycle starts.
func (c *Controller) EndShift(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.publisher.Stop()

	if err := c.sessions.End(ctx, c.publishAs()); err != nil {
		return fmt.Errorf("end shift: %w", err)
	}
	if err := c.states.Clear(ctx, c.stateKey()); err != nil {
		return err
	}

	c.session = nil
	c.phase = PhaseOffline
	return nil
}

// SetIdentity migrates the device from the anonymous slot to the
// authenticated technician's slot once login resolves. Called at most once
// per login; a no-op when the identity is unchanged.
func (c *Controller) SetIdentity(ctx context.Context, technicianID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if technicianID == "" || technicianID == c.technicianID {
		return nil
	}
	if c.phase != PhaseOffline {
		return errors.New("cannot change identity during an active shift")
	}

	fromKey := c.stateKey()
	c.technicianID = technicianID
	return c.states.Migrate(ctx, fromKey, c.stateKey())
}

// Phase returns the controller's current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Session returns the active session, or nil when offline.
func (c *Controller) Session() *entities.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}
