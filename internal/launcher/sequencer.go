// Package launcher performs the two-phase launch of a model instance: the
// instance is registered with the serving backend, its UI is provisioned
// under the same uid, and on joint success the instance endpoint is opened.
// A shared Gate enforces at most one launch in flight process-wide.
package launcher

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"launchpad/internal/catalog"
	"launchpad/pkg/types"
)

// State represents the sequencer's lifecycle state. Terminal states settle
// back to idle as soon as the gate is released; success and failure are
// observable through the returned error and published events.
type State string

const (
	StateIdle      State = "idle"
	StateLaunching State = "launching"
	StateSuccess   State = "success"
	StateFailed    State = "failed"
)

// Backend is the subset of the serving backend the sequencer talks to.
type Backend interface {
	CreateModel(ctx context.Context, p types.LaunchPayload) error
	ProvisionUI(ctx context.Context, uid string, p types.LaunchPayload) error
	TerminateModel(ctx context.Context, uid string) error
	EndpointURL(uid string) string
}

// Opener opens an endpoint URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

type noopOpener struct{}

func (noopOpener) Open(string) error { return nil }

// SequencerConfig wires a Sequencer; zero-value optional fields get defaults.
type SequencerConfig struct {
	Backend   Backend
	Opener    Opener
	Gate      *Gate
	Logger    zerolog.Logger
	Publisher EventPublisher
}

type Sequencer struct {
	backend Backend
	opener  Opener
	gate    *Gate
	log     zerolog.Logger
	pub     EventPublisher

	mu       sync.Mutex
	state    State
	attempts atomic.Uint64
}

func NewSequencer(cfg SequencerConfig) *Sequencer {
	if cfg.Gate == nil {
		cfg.Gate = NewGate()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.Opener == nil {
		cfg.Opener = noopOpener{}
	}
	return &Sequencer{
		backend: cfg.Backend,
		opener:  cfg.Opener,
		gate:    cfg.Gate,
		log:     cfg.Logger,
		pub:     cfg.Publisher,
		state:   StateIdle,
	}
}

func (s *Sequencer) Gate() *Gate { return s.gate }

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts returns the number of launches that passed the guards.
func (s *Sequencer) Attempts() uint64 { return s.attempts.Load() }

func (s *Sequencer) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Launch runs the two-phase provisioning for a complete selection.
//
// Guard order matters: an incomplete selection is refused before the gate is
// touched, and a held gate is refused before any network call. Between the
// gate check and the flag set there is no await point; TryAcquire is atomic.
func (s *Sequencer) Launch(ctx context.Context, entry types.CatalogEntry, sel types.Selection) (types.LaunchResponse, error) {
	if !catalog.SelectionComplete(entry, sel) {
		return types.LaunchResponse{}, ErrSelectionIncomplete(entry.Name)
	}
	size, err := strconv.ParseFloat(sel.Size, 64)
	if err != nil {
		return types.LaunchResponse{}, ErrSelectionIncomplete("size is not numeric: " + sel.Size)
	}
	if !s.gate.TryAcquire() {
		return types.LaunchResponse{}, launchInProgressError{modelName: entry.Name}
	}
	defer s.gate.Release()
	s.setState(StateLaunching)
	defer s.setState(StateIdle)
	s.attempts.Add(1)

	uid := uuid.NewString()
	payload := types.LaunchPayload{
		ModelUID:            uid,
		ModelName:           entry.Name,
		ModelFormat:         sel.Format,
		ModelSizeInBillions: size,
		Quantization:        sel.Quantization,
	}
	s.log.Debug().Str("model_uid", uid).Str("model", entry.Name).
		Str("format", sel.Format).Str("size", sel.Size).Str("quantization", sel.Quantization).
		Msg("launch start")
	s.pub.Publish(Event{Name: "launch.start", ModelUID: uid, Fields: map[string]any{"model": entry.Name}})
	start := time.Now()

	if err := s.backend.CreateModel(ctx, payload); err != nil {
		return types.LaunchResponse{}, s.fail(uid, "create", start, err)
	}
	if err := s.backend.ProvisionUI(ctx, uid, payload); err != nil {
		// The instance registered in phase one would otherwise be orphaned.
		// Termination is best-effort and decoupled from ctx cancellation;
		// the launch outcome stays failed either way.
		if terr := s.backend.TerminateModel(context.WithoutCancel(ctx), uid); terr != nil {
			s.log.Debug().Err(terr).Str("model_uid", uid).Msg("rollback terminate failed")
		}
		return types.LaunchResponse{}, s.fail(uid, "provision", start, err)
	}

	endpoint := s.backend.EndpointURL(uid)
	if err := s.opener.Open(endpoint); err != nil {
		// Both provisioning calls succeeded; a browser that refuses to open
		// does not fail the launch.
		s.log.Warn().Err(err).Str("endpoint", endpoint).Msg("open endpoint failed")
	}
	s.setState(StateSuccess)
	launchesTotal.WithLabelValues("success").Inc()
	launchDuration.Observe(time.Since(start).Seconds())
	s.log.Info().Str("model_uid", uid).Str("model", entry.Name).Dur("dur", time.Since(start)).Msg("launch succeeded")
	s.pub.Publish(Event{Name: "launch.success", ModelUID: uid, Fields: map[string]any{"endpoint": endpoint}})
	return types.LaunchResponse{ModelUID: uid, Endpoint: endpoint}, nil
}

func (s *Sequencer) fail(uid, phase string, start time.Time, err error) error {
	s.setState(StateFailed)
	launchesTotal.WithLabelValues("failure").Inc()
	launchDuration.Observe(time.Since(start).Seconds())
	s.log.Error().Err(err).Str("model_uid", uid).Str("phase", phase).Msg("launch failed")
	s.pub.Publish(Event{Name: "launch.failed", ModelUID: uid, Fields: map[string]any{"phase": phase, "error": err.Error()}})
	return err
}
