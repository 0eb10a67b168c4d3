package engine

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Phase is the current step of the session state machine.
type Phase int

const (
	PhaseSetup             Phase = iota // no game running
	PhaseAwaitingSelection              // active player picks tools
	PhaseScored                         // turn scored, awaiting reflection
	PhaseGameOver                       // final round finished
)

var phaseNames = map[Phase]string{
	PhaseSetup:             "Setup",
	PhaseAwaitingSelection: "AwaitingSelection",
	PhaseScored:            "Scored",
	PhaseGameOver:          "GameOver",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}

// InProgress reports whether a round is being played.
func (p Phase) InProgress() bool {
	return p == PhaseAwaitingSelection || p == PhaseScored
}

var (
	// ErrSessionNotStarted is returned for turn operations before Start.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrInvalidPhase is returned when an operation does not fit the current phase.
	ErrInvalidPhase = errors.New("invalid phase transition")
	// ErrInvalidSetup is returned by Start for bad player or round counts.
	ErrInvalidSetup = errors.New("invalid setup")
)

func phaseError(op string, p Phase) error {
	if p == PhaseSetup {
		return fmt.Errorf("%s: %w", op, ErrSessionNotStarted)
	}
	return fmt.Errorf("%s during %s: %w", op, p, ErrInvalidPhase)
}

func seededRNG(seed int64) *rand.Rand {
	// #nosec G404 -- scenario order needs to be reproducible, not secret
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}
