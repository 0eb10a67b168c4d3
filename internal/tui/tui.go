package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/strategy-shuffle/internal/bot"
	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/coach"
	"github.com/tatianab/strategy-shuffle/internal/engine"
	"github.com/tatianab/strategy-shuffle/internal/models"
)

const (
	maxPlayers = 6
	maxRounds  = 9
)

type screenState int

const (
	stateSetup screenState = iota
	statePlaying
	stateScored
	stateGameOver
	stateError
)

type setupStep int

const (
	stepPlayers setupStep = iota
	stepRounds
	stepNames
)

// Options configures a game run. Only Session is required.
type Options struct {
	Session *engine.Session
	Coach   *coach.Coach
	// Bots maps player names to automated strategies; other seats are human.
	Bots    map[string]bot.Strategy
	Profile models.Profile
	// SaveDir receives the journal at game over. Empty disables export.
	SaveDir string
	Players int
	Rounds  int
	Names   []string
	Logger  *slog.Logger
}

type model struct {
	state     screenState
	opts      Options
	session   *engine.Session
	textInput textinput.Model
	textArea  textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model
	err       error
	width     int
	height    int

	step       setupStep
	numPlayers int
	numRounds  int
	names      []string

	busy     string
	warning  string
	feedback string
	showHint bool
	gameLog  string

	summary     models.Summary
	journalPath string
}

func NewModel(opts Options) model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Players < 1 || opts.Players > maxPlayers {
		opts.Players = 2
	}
	if opts.Rounds < 1 || opts.Rounds > maxRounds {
		opts.Rounds = 5
	}

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	// Reflections may span lines: Enter submits, ctrl+j breaks the line.
	ta := textarea.New()
	ta.Placeholder = "Your thoughts (optional)"
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j", "alt+enter")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		state:      stateSetup,
		opts:       opts,
		session:    opts.Session,
		textInput:  ti,
		textArea:   ta,
		spinner:    sp,
		numPlayers: opts.Players,
		numRounds:  opts.Rounds,
	}
	m.setupPlaceholder()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type botChoseMsg struct {
	ids []catalog.ToolID
	err error
}

type botReflectedMsg struct {
	text string
	err  error
}

type feedbackMsg struct {
	player string
	text   string
	err    error
}

type journalSavedMsg struct {
	path string
	err  error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if msg.Alt && m.state == stateScored {
				break
			}
			if m.busy != "" {
				return m, nil
			}
			var value string
			if m.state == stateScored {
				value = strings.TrimSpace(m.textArea.Value())
				m.textArea.Reset()
			} else {
				value = strings.TrimSpace(m.textInput.Value())
				m.textInput.Reset()
			}
			return m.handleEnter(value)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.72)
		m.viewport.Height = max(msg.Height-8, 5)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case botChoseMsg:
		m.busy = ""
		ids := msg.ids
		if msg.err != nil {
			m.opts.Logger.Warn("bot.choose_failed", "player", m.session.State().ActivePlayer, "error", msg.err.Error())
			ids = nil
		}
		m, cmd = m.submitSelection(ids)
		if m.state == statePlaying && m.warning != "" {
			ids, _ = bot.Greedy{}.Choose(context.Background(), bot.TurnFromState(m.session.State(), m.session.Catalog()))
			m, cmd = m.submitSelection(ids)
		}
		return m, cmd

	case botReflectedMsg:
		m.busy = ""
		return m.submitReflection(msg.text)

	case feedbackMsg:
		if msg.err != nil {
			m.opts.Logger.Warn("coach.feedback_failed", "player", msg.player, "error", msg.err.Error())
			return m, nil
		}
		m.feedback = fmt.Sprintf("Coach for %s: %s", msg.player, msg.text)
		m.refresh()
		return m, nil

	case journalSavedMsg:
		if msg.err != nil {
			m.warning = "Could not save journal: " + msg.err.Error()
			return m, nil
		}
		m.journalPath = msg.path
		m.refresh()
		return m, nil
	}

	if m.busy == "" && m.state != stateError {
		if m.state == stateScored {
			m.textArea, cmd = m.textArea.Update(msg)
		} else {
			m.textInput, cmd = m.textInput.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m model) handleEnter(value string) (model, tea.Cmd) {
	if value == "/quit" {
		return m, tea.Quit
	}
	if value == "/restart" && m.state != stateSetup {
		return m.restart(), nil
	}

	switch m.state {
	case stateSetup:
		return m.handleSetup(value)

	case statePlaying:
		if value == "/hint" {
			m.showHint = !m.showHint
			m.refresh()
			return m, nil
		}
		ids, err := m.session.Catalog().ResolveList(value)
		if err != nil {
			m.warning = err.Error()
			return m, nil
		}
		return m.submitSelection(ids)

	case stateScored:
		return m.submitReflection(value)

	case stateGameOver:
		return m.restart(), nil
	}
	return m, nil
}

func (m model) handleSetup(value string) (model, tea.Cmd) {
	m.warning = ""
	switch m.step {
	case stepPlayers:
		n, ok := parseCount(value, m.numPlayers, maxPlayers)
		if !ok {
			m.warning = fmt.Sprintf("Enter a number of players between 1 and %d.", maxPlayers)
			return m, nil
		}
		m.numPlayers = n
		m.step = stepRounds

	case stepRounds:
		n, ok := parseCount(value, m.numRounds, maxRounds)
		if !ok {
			m.warning = fmt.Sprintf("Enter a number of rounds between 1 and %d.", maxRounds)
			return m, nil
		}
		m.numRounds = n
		m.step = stepNames

	case stepNames:
		if value == "" {
			value = m.defaultName(len(m.names))
		}
		m.names = append(m.names, value)
		if len(m.names) == m.numPlayers {
			return m.start()
		}
	}
	m.setupPlaceholder()
	return m, nil
}

func parseCount(value string, def, limit int) (int, bool) {
	if value == "" {
		return def, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > limit {
		return 0, false
	}
	return n, true
}

func (m model) defaultName(i int) string {
	if i < len(m.opts.Names) && strings.TrimSpace(m.opts.Names[i]) != "" {
		return strings.TrimSpace(m.opts.Names[i])
	}
	return fmt.Sprintf("Player %d", i+1)
}

func (m *model) setupPlaceholder() {
	switch m.step {
	case stepPlayers:
		m.textInput.Placeholder = strconv.Itoa(m.numPlayers)
	case stepRounds:
		m.textInput.Placeholder = strconv.Itoa(m.numRounds)
	case stepNames:
		m.textInput.Placeholder = m.defaultName(len(m.names))
	}
}

func (m model) start() (model, tea.Cmd) {
	st, err := m.session.Start(m.names, m.numRounds)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	m.gameLog = ""
	m.logRound(st)
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(max(int(float64(m.width)*0.72), 40), max(m.height-8, 5))
	}
	return m.advance(st)
}

func (m model) restart() model {
	m.session.Reset()
	m.state = stateSetup
	m.step = stepPlayers
	m.names = nil
	m.gameLog = ""
	m.warning = ""
	m.feedback = ""
	m.showHint = false
	m.summary = models.Summary{}
	m.journalPath = ""
	m.setupPlaceholder()
	return m
}

// advance moves the screen to match the session after a transition and
// schedules the next bot action when a bot is up.
func (m model) advance(st engine.State) (model, tea.Cmd) {
	switch st.Phase {
	case engine.PhaseGameOver:
		return m.finish()

	case engine.PhaseAwaitingSelection:
		m.state = statePlaying
		m.textInput.Placeholder = "Tools by number or name, e.g. 1, pathos, might"
		m.refresh()
		if strategy, ok := m.opts.Bots[st.ActivePlayer]; ok {
			m.busy = st.ActivePlayer + " is choosing tools"
			turn := bot.TurnFromState(st, m.session.Catalog())
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
				ids, err := strategy.Choose(context.Background(), turn)
				return botChoseMsg{ids: ids, err: err}
			})
		}
	}
	return m, nil
}

func (m model) submitSelection(ids []catalog.ToolID) (model, tea.Cmd) {
	res, err := m.session.SubmitSelection(ids)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	if !res.Accepted {
		m.warning = res.Warning
		return m, nil
	}

	m.warning = ""
	m.state = stateScored
	m.textArea.Reset()

	st := m.session.State()
	b, _ := m.session.Breakdown()
	m.logTurn(b)
	m.refresh()

	if strategy, ok := m.opts.Bots[st.ActivePlayer]; ok {
		m.busy = st.ActivePlayer + " is reflecting"
		turn := bot.TurnFromState(st, m.session.Catalog())
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			text, err := strategy.Reflect(context.Background(), turn, b)
			return botReflectedMsg{text: text, err: err}
		})
	}
	return m, nil
}

func (m model) submitReflection(text string) (model, tea.Cmd) {
	before := m.session.State()
	b, _ := m.session.Breakdown()

	st, err := m.session.SubmitReflection(text)
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	if strings.TrimSpace(text) != "" {
		m.gameLog += reflectionStyle.Render(fmt.Sprintf("  %s reflects: %s", b.Player, text)) + "\n"
	}

	var cmds []tea.Cmd
	_, isBot := m.opts.Bots[b.Player]
	if m.opts.Coach != nil && !isBot {
		c := m.opts.Coach
		scenario := before.Scenario
		cmds = append(cmds, func() tea.Msg {
			note, err := c.Feedback(context.Background(), scenario, b, text)
			return feedbackMsg{player: b.Player, text: note, err: err}
		})
	}

	if st.Phase == engine.PhaseAwaitingSelection && st.Round != before.Round {
		m.logRound(st)
	}
	m, cmd := m.advance(st)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) finish() (model, tea.Cmd) {
	sum, err := m.session.Summary()
	if err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	m.summary = sum
	m.state = stateGameOver
	m.textInput.Placeholder = "Press Enter to play again, or /quit"
	m.refresh()

	if m.opts.SaveDir == "" {
		return m, nil
	}
	journal, err := m.session.Journal()
	if err != nil {
		return m, nil
	}
	dir := m.opts.SaveDir
	return m, func() tea.Msg {
		if err := journal.Save(dir); err != nil {
			return journalSavedMsg{err: err}
		}
		return journalSavedMsg{path: filepath.Join(dir, journal.Name)}
	}
}

func (m *model) logRound(st engine.State) {
	m.gameLog += "\n" + titleStyle.Render(fmt.Sprintf("Round %d: %s", st.Round, st.Scenario.Name)) + "\n"
}

func (m *model) logTurn(b engine.TurnBreakdown) {
	names := make([]string, len(b.Tools))
	for i, t := range b.Tools {
		names[i] = string(t.ID)
	}
	line := fmt.Sprintf("> %s played %s for %d points", b.Player, strings.Join(names, ", "), b.Total)
	if b.Token != "" {
		line += ", earning the " + b.Token
	}
	m.gameLog += userStyle.Render(line) + "\n"
}

func (m *model) refresh() {
	if m.viewport.Width == 0 {
		return
	}
	m.viewport.SetContent(m.renderBoard())
	if m.state == stateScored {
		m.viewport.GotoBottom()
	}
}

func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
