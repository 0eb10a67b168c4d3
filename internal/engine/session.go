// Package engine runs the Strategy Shuffle session state machine: setup,
// round-robin turns across players, and game over.
//
// A Session is owned by a single driver and is not safe for concurrent use.
package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/models"
	"github.com/tatianab/strategy-shuffle/internal/scoring"
)

type turnKey struct {
	round  int
	player int
}

// current holds the turn that has been scored but not yet reflected on.
type current struct {
	tools     []catalog.Tool
	breakdown scoring.Breakdown
	token     string
	prompt    string
}

type Session struct {
	cat    *catalog.Catalog
	rng    *rand.Rand
	seed   int64
	logger *slog.Logger
	now    func() time.Time

	phase     Phase
	players   []*models.Player
	maxRounds int
	round     int
	playerIdx int
	scenario  catalog.Scenario
	pool      []catalog.Scenario
	turnDone  map[turnKey]bool
	turn      *current
	log       []models.TurnRecord
}

type Option func(*Session)

// WithSeed makes scenario order and reflection prompts reproducible.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seed = seed
		s.rng = seededRNG(seed)
	}
}

// WithRand supplies the random source directly. The recorded seed stays zero
// unless WithSeed is also given.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a session in the setup phase. Without WithSeed a random seed is
// drawn so that the game can still be replayed from its journal.
func New(cat *catalog.Catalog, opts ...Option) *Session {
	s := &Session{
		cat:    cat,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		phase:  PhaseSetup,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		WithSeed(newSeed())(s)
	}
	return s
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

func (s *Session) Catalog() *catalog.Catalog { return s.cat }

func (s *Session) Seed() int64 { return s.seed }

func (s *Session) Phase() Phase { return s.phase }

// Start begins a game with one player per name and the given number of rounds.
// Blank names are replaced with "Player N".
func (s *Session) Start(names []string, rounds int) (State, error) {
	if s.phase != PhaseSetup {
		return s.State(), fmt.Errorf("start during %s: %w", s.phase, ErrInvalidPhase)
	}
	if len(names) == 0 {
		return s.State(), fmt.Errorf("%w: at least one player is required", ErrInvalidSetup)
	}
	if rounds < 1 {
		return s.State(), fmt.Errorf("%w: at least one round is required", ErrInvalidSetup)
	}

	s.players = make([]*models.Player, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		s.players[i] = models.NewPlayer(name)
	}
	s.maxRounds = rounds
	s.round = 1
	s.playerIdx = 0
	s.turnDone = make(map[turnKey]bool)
	s.turn = nil
	s.log = nil
	s.pool = s.shuffledScenarios()
	s.scenario = s.drawScenario()
	s.phase = PhaseAwaitingSelection

	s.logger.Info("session.start",
		"players", len(s.players),
		"rounds", rounds,
		"seed", s.seed,
		"scenario", s.scenario.Name,
	)
	return s.State(), nil
}

// SubmitResult reports whether a selection was scored. A rejected selection
// leaves the session unchanged and carries a warning for the player.
type SubmitResult struct {
	Accepted bool
	Warning  string
}

// SubmitSelection scores the active player's tools against the current scenario.
func (s *Session) SubmitSelection(ids []catalog.ToolID) (SubmitResult, error) {
	if s.phase != PhaseAwaitingSelection {
		return SubmitResult{}, phaseError("submit selection", s.phase)
	}

	tools, err := scoring.Validate(s.cat, ids)
	if err != nil {
		s.logger.Debug("turn.rejected", "player", s.active().Name, "error", err.Error())
		return SubmitResult{Warning: warningText(err)}, nil
	}

	b := scoring.Score(tools, s.scenario)
	p := s.active()
	p.AddRoundScore(b.Total)

	token := ""
	if scoring.Earned(b.Total) {
		token = s.scenario.RewardToken
		p.AddToken(token)
	}

	prompts := s.cat.ReflectionPrompts()
	s.turn = &current{
		tools:     tools,
		breakdown: b,
		token:     token,
		prompt:    prompts[s.rng.IntN(len(prompts))],
	}
	s.turnDone[turnKey{s.round, s.playerIdx}] = true
	s.phase = PhaseScored

	ids = make([]catalog.ToolID, len(tools))
	for i, t := range tools {
		ids[i] = t.ID
	}
	s.log = append(s.log, models.TurnRecord{
		Round:    s.round,
		Player:   p.Name,
		Scenario: s.scenario.Name,
		Tools:    ids,
		Score:    b,
		Token:    token,
	})

	s.logger.Debug("turn.scored",
		"round", s.round,
		"player", p.Name,
		"tools", ids,
		"total", b.Total,
		"token", token,
	)
	return SubmitResult{Accepted: true}, nil
}

func warningText(err error) string {
	msg := err.Error()
	msg = strings.TrimPrefix(msg, scoring.ErrInvalidSelection.Error()+": ")
	if msg == "" {
		return "Please select at least one tool."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// TurnBreakdown describes the turn that was just scored.
type TurnBreakdown struct {
	scoring.Breakdown
	Player  string
	Tools   []catalog.Tool
	Matched []catalog.ToolID
	// Token is the reward token earned this turn, or empty.
	Token  string
	Prompt string
}

// Breakdown returns the score of the turn awaiting reflection.
func (s *Session) Breakdown() (TurnBreakdown, error) {
	if s.phase != PhaseScored {
		return TurnBreakdown{}, phaseError("breakdown", s.phase)
	}
	return TurnBreakdown{
		Breakdown: s.turn.breakdown,
		Player:    s.active().Name,
		Tools:     append([]catalog.Tool(nil), s.turn.tools...),
		Matched:   scoring.Matched(s.turn.tools, s.scenario),
		Token:     s.turn.token,
		Prompt:    s.turn.prompt,
	}, nil
}

// SubmitReflection records an optional reflection and advances to the next
// turn, the next round, or game over.
func (s *Session) SubmitReflection(text string) (State, error) {
	if s.phase != PhaseScored {
		return s.State(), phaseError("submit reflection", s.phase)
	}

	p := s.active()
	if p.AddReflection(s.round, s.turn.prompt, text) {
		s.log[len(s.log)-1].Reflection = strings.TrimSpace(text)
	}
	s.turnDone[turnKey{s.round, s.playerIdx}] = false
	s.turn = nil

	switch {
	case s.playerIdx < len(s.players)-1:
		s.playerIdx++
		s.phase = PhaseAwaitingSelection
	case s.round < s.maxRounds:
		s.round++
		s.playerIdx = 0
		s.scenario = s.drawScenario()
		s.phase = PhaseAwaitingSelection
		s.logger.Debug("round.start", "round", s.round, "scenario", s.scenario.Name)
	default:
		s.phase = PhaseGameOver
		s.logger.Info("session.game_over", "rounds", s.maxRounds, "turns", len(s.log))
	}
	return s.State(), nil
}

// Summary ranks the players by final score, highest first. Equal scores keep
// the order the players were entered in, so the winner is the first of them.
func (s *Session) Summary() (models.Summary, error) {
	if s.phase != PhaseGameOver {
		return models.Summary{}, phaseError("summary", s.phase)
	}

	rows := make([]models.SummaryRow, len(s.players))
	for i, p := range s.players {
		c := p.Clone()
		rows[i] = models.SummaryRow{
			Player:      c.Name,
			BasePoints:  c.InfluencePoints,
			TokenCount:  c.TokenCount(),
			TokenBonus:  c.TokenBonus(),
			FinalScore:  c.FinalScore(),
			Tokens:      c.Tokens,
			RoundScores: c.RoundScores,
			Reflections: c.Reflections,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].FinalScore > rows[j].FinalScore
	})

	sum := models.Summary{Rows: rows, Winner: rows[0].Player}
	for _, r := range rows[1:] {
		if r.FinalScore == rows[0].FinalScore {
			sum.Tied = append(sum.Tied, r.Player)
		}
	}
	return sum, nil
}

// Turns returns the log of scored turns.
func (s *Session) Turns() []models.TurnRecord {
	return append([]models.TurnRecord(nil), s.log...)
}

// Journal builds the exportable record of a finished game.
func (s *Session) Journal() (*models.Journal, error) {
	sum, err := s.Summary()
	if err != nil {
		return nil, err
	}
	finished := s.now()
	return &models.Journal{
		Name:     models.JournalName(finished),
		Finished: finished,
		Rounds:   s.maxRounds,
		Seed:     s.seed,
		Summary:  sum,
		Turns:    s.Turns(),
	}, nil
}

// Reset discards the game and returns to setup. The catalog is untouched and
// the scenario pool is rebuilt on the next Start.
func (s *Session) Reset() {
	if s.phase != PhaseSetup {
		s.logger.Info("session.reset", "phase", s.phase.String())
	}
	s.phase = PhaseSetup
	s.players = nil
	s.maxRounds = 0
	s.round = 0
	s.playerIdx = 0
	s.scenario = catalog.Scenario{}
	s.pool = nil
	s.turnDone = nil
	s.turn = nil
	s.log = nil
}

func (s *Session) active() *models.Player {
	return s.players[s.playerIdx]
}

func (s *Session) shuffledScenarios() []catalog.Scenario {
	pool := s.cat.Scenarios()
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool
}

// drawScenario pops the next scenario, refilling the pool with a freshly
// shuffled copy of the catalog once it runs dry.
func (s *Session) drawScenario() catalog.Scenario {
	if len(s.pool) == 0 {
		s.pool = s.shuffledScenarios()
		s.logger.Debug("scenario.reshuffle", "size", len(s.pool))
	}
	next := s.pool[0]
	s.pool = s.pool[1:]
	return next
}

// IsTurnError reports whether err came from calling an operation out of order.
func IsTurnError(err error) bool {
	return errors.Is(err, ErrInvalidPhase) || errors.Is(err, ErrSessionNotStarted)
}
