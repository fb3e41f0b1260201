// Package session owns the lifecycle of generation attempts: input
// validation, the single in-flight request, and the outcome that replaces
// any previous one.
//
// A Session moves through an explicit transition table:
//
//	Idle, Succeeded, Failed -> Validating -> Loading -> Succeeded | Failed
//	Validating -> Failed (empty prompt)
//	Idle, Succeeded, Failed -> Idle (clear)
//
// There is no terminal phase. Event loops drive a Session with Begin and
// Finish so the blocking call can run elsewhere; Submit does both in one
// blocking call.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/germanamz/localwriter/pkg/apiclient"
)

var (
	// ErrBusy is returned when a generation is already in flight.
	ErrBusy = errors.New("session: generation in progress")

	// ErrInvalidTransition reports a phase change the transition table
	// does not allow.
	ErrInvalidTransition = errors.New("session: invalid transition")

	// ErrPromptTooLong is returned by SetPrompt for text over MaxPromptLength.
	ErrPromptTooLong = fmt.Errorf("session: prompt exceeds %d characters", apiclient.MaxPromptLength)
)

// Phase is the lifecycle state of a Session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseLoading    Phase = "loading"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseValidating, PhaseIdle},
	PhaseValidating: {PhaseLoading, PhaseFailed},
	PhaseLoading:    {PhaseSucceeded, PhaseFailed},
	PhaseSucceeded:  {PhaseValidating, PhaseIdle},
	PhaseFailed:     {PhaseValidating, PhaseIdle},
}

// CanTransition reports whether the table allows moving from one phase to
// another.
func CanTransition(from, to Phase) bool {
	return slices.Contains(transitions[from], to)
}

// Metadata describes the generation that produced the current output. Every
// field is copied verbatim from the backend response.
type Metadata struct {
	TimeTaken   float64
	Temperature float64
	Timestamp   string
	Prompt      string
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	Phase       Phase
	Prompt      string
	Temperature float64
	Output      string
	// Metadata is nil unless Phase is PhaseSucceeded.
	Metadata *Metadata
	// Err is nil unless Phase is PhaseFailed.
	Err *apiclient.GenerationError
}

// Message is the user-facing error text, or "" when there is no error.
func (s Snapshot) Message() string {
	if s.Err == nil {
		return ""
	}

	return s.Err.Error()
}

// Generator performs one generation request.
type Generator interface {
	Generate(ctx context.Context, req apiclient.GenerationRequest) (apiclient.GenerationResult, error)
}

// TemperatureStore persists the temperature between runs.
type TemperatureStore interface {
	Load() (float64, bool)
	Save(v float64)
}

// Session is the generation state machine. It is safe for concurrent use.
type Session struct {
	gen   Generator
	store TemperatureStore

	mu          sync.Mutex
	phase       Phase
	prompt      string
	temperature float64
	output      string
	metadata    *Metadata
	err         *apiclient.GenerationError
}

// New creates an Idle session. The temperature is restored from store when
// a value was saved, clamped to the allowed range, and otherwise defaults to
// apiclient.DefaultTemperature. A nil store disables persistence.
func New(gen Generator, store TemperatureStore) *Session {
	s := &Session{
		gen:         gen,
		store:       store,
		phase:       PhaseIdle,
		temperature: apiclient.DefaultTemperature,
	}

	if store != nil {
		if v, ok := store.Load(); ok {
			s.temperature = ClampTemperature(v)
		}
	}

	return s
}

// ClampTemperature bounds v to [MinTemperature, MaxTemperature]. NaN maps to
// the default.
func ClampTemperature(v float64) float64 {
	if math.IsNaN(v) {
		return apiclient.DefaultTemperature
	}

	return min(max(v, apiclient.MinTemperature), apiclient.MaxTemperature)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// Temperature returns the current temperature.
func (s *Session) Temperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.temperature
}

// SetPrompt replaces the prompt. Text over MaxPromptLength characters is
// rejected and the previous prompt kept. Editing is allowed in every phase.
func (s *Session) SetPrompt(p string) error {
	if utf8.RuneCountInString(p) > apiclient.MaxPromptLength {
		return ErrPromptTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompt = p

	return nil
}

// SetTemperature clamps v, stores it, and persists it immediately. The
// applied value is returned.
func (s *Session) SetTemperature(v float64) float64 {
	v = ClampTemperature(v)

	s.mu.Lock()
	s.temperature = v
	s.mu.Unlock()

	if s.store != nil {
		s.store.Save(v)
	}

	return v
}

// CanSubmit reports whether the prompt is non-blank and nothing is in flight.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return strings.TrimSpace(s.prompt) != "" && s.phase != PhaseLoading
}

// CanClear reports whether there is an outcome to clear and nothing is in
// flight.
func (s *Session) CanClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase == PhaseSucceeded || s.phase == PhaseFailed
}

// Begin validates the prompt and, if it is non-blank, enters Loading and
// returns the request to send. A blank prompt moves the session to Failed
// with a validation error, which is also returned. While Loading, Begin
// returns ErrBusy and changes nothing.
func (s *Session) Begin() (apiclient.GenerationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseLoading {
		return apiclient.GenerationRequest{}, ErrBusy
	}

	if err := s.transitionLocked(PhaseValidating); err != nil {
		return apiclient.GenerationRequest{}, err
	}

	if strings.TrimSpace(s.prompt) == "" {
		verr := apiclient.NewValidationError()
		s.output = ""
		s.metadata = nil
		s.err = verr

		if err := s.transitionLocked(PhaseFailed); err != nil {
			return apiclient.GenerationRequest{}, err
		}

		return apiclient.GenerationRequest{}, verr
	}

	if err := s.transitionLocked(PhaseLoading); err != nil {
		return apiclient.GenerationRequest{}, err
	}

	s.output = ""
	s.metadata = nil
	s.err = nil

	return apiclient.NewGenerationRequest(s.prompt, s.temperature, apiclient.DefaultMaxNewTokens), nil
}

// Finish records the outcome of the request returned by Begin. A nil err
// moves to Succeeded with result; otherwise the error is normalized into the
// generation error taxonomy and the session moves to Failed. Finish outside
// Loading returns ErrInvalidTransition.
func (s *Session) Finish(result apiclient.GenerationResult, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if terr := s.transitionLocked(PhaseFailed); terr != nil {
			return terr
		}

		s.output = ""
		s.metadata = nil
		s.err = apiclient.AsGenerationError(err)

		return nil
	}

	if terr := s.transitionLocked(PhaseSucceeded); terr != nil {
		return terr
	}

	s.output = result.Output
	s.metadata = &Metadata{
		TimeTaken:   result.TimeTaken,
		Temperature: result.Temperature,
		Timestamp:   result.Timestamp,
		Prompt:      result.Prompt,
	}
	s.err = nil

	return nil
}

// Submit runs one full generation attempt and blocks until it completes.
// The returned snapshot reflects the final phase. The error is ErrBusy when
// a generation is already in flight, or the *apiclient.GenerationError the
// attempt failed with.
func (s *Session) Submit(ctx context.Context) (Snapshot, error) {
	req, err := s.Begin()
	if err != nil {
		return s.Snapshot(), err
	}

	result, genErr := s.gen.Generate(ctx, req)

	if err := s.Finish(result, genErr); err != nil {
		return s.Snapshot(), err
	}

	snap := s.Snapshot()
	if snap.Err != nil {
		return snap, snap.Err
	}

	return snap, nil
}

// Clear resets the session to Idle, emptying the prompt, output, error and
// metadata. The temperature is kept. Clear while Loading returns ErrBusy.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseLoading {
		return ErrBusy
	}

	if err := s.transitionLocked(PhaseIdle); err != nil {
		return err
	}

	s.prompt = ""
	s.output = ""
	s.metadata = nil
	s.err = nil

	return nil
}

func (s *Session) transitionLocked(to Phase) error {
	if !CanTransition(s.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.phase, to)
	}

	s.phase = to

	return nil
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:       s.phase,
		Prompt:      s.prompt,
		Temperature: s.temperature,
		Output:      s.output,
		Err:         s.err,
	}

	if s.metadata != nil {
		md := *s.metadata
		snap.Metadata = &md
	}

	return snap
}
