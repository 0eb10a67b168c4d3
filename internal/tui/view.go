package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/strategy-shuffle/internal/catalog"
	"github.com/tatianab/strategy-shuffle/internal/engine"
	"github.com/tatianab/strategy-shuffle/internal/scoring"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C")).
			Bold(true)

	tokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B")).
			Bold(true)

	reflectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9")).
			Italic(true)

	powerStyles = map[catalog.PowerType]lipgloss.Style{
		catalog.Soft:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6CB6FF")),
		catalog.Hard:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6C6C")),
		catalog.Smart: lipgloss.NewStyle().Foreground(lipgloss.Color("#6CFF8E")),
	}
)

func badge(p catalog.PowerType) string {
	return powerStyles[p].Render("■")
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateSetup:
		s = m.renderSetup()

	case statePlaying, stateScored, stateGameOver:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)

		var status string
		switch {
		case m.busy != "":
			status = m.spinner.View() + " " + m.busy + "..."
		case m.warning != "":
			status = warningStyle.Render(m.warning)
		case m.feedback != "":
			status = reflectionStyle.Render(m.feedback)
		}

		input := m.textInput.View()
		help := helpStyle.Render("Commands: /hint, /restart, /quit. Esc exits.")
		if m.state == stateScored {
			input = m.textArea.View()
			help = helpStyle.Render("Enter submits, ctrl+j starts a new line. /restart, /quit. Esc exits.")
		}
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderProgress(),
			mainView,
			status,
			input,
			help,
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderSetup() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("The Strategy Shuffle") + "\n")
	b.WriteString(gameStyle.Render("A leadership & influence card game") + "\n\n")

	switch m.step {
	case stepPlayers:
		fmt.Fprintf(&b, "How many players? (1-%d)\n", maxPlayers)
	case stepRounds:
		fmt.Fprintf(&b, "How many rounds? (1-%d)\n", maxRounds)
	case stepNames:
		fmt.Fprintf(&b, "Name for player %d of %d:\n", len(m.names)+1, m.numPlayers)
	}
	b.WriteString(m.textInput.View() + "\n")
	if m.warning != "" {
		b.WriteString("\n" + warningStyle.Render(m.warning) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("Press Enter to accept the default."))
	return b.String()
}

func (m model) renderProgress() string {
	st := m.session.State()
	if st.MaxRounds == 0 {
		return ""
	}
	const width = 30
	filled := int(st.Progress() * width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s  Round %d of %d", bar, st.Round, st.MaxRounds)
}

// renderBoard builds the scrolling main panel for the current screen.
func (m model) renderBoard() string {
	width := m.viewport.Width
	st := m.session.State()
	var b strings.Builder

	switch m.state {
	case statePlaying, stateScored:
		sc := st.Scenario
		b.WriteString(titleStyle.Render(sc.Name) + "\n\n")
		b.WriteString(gameStyle.Width(width).Render(sc.Situation) + "\n\n")

		if m.showHint {
			suggested := make([]string, len(sc.Suggested))
			for i, id := range sc.Suggested {
				suggested[i] = string(id)
			}
			fmt.Fprintf(&b, "Suggested tools: %s\n", strings.Join(suggested, ", "))
			fmt.Fprintf(&b, "Reward token: %s\n", tokenStyle.Render(sc.RewardToken))
			b.WriteString(gameStyle.Width(width).Render("Example: "+sc.Example) + "\n")
			b.WriteString(gameStyle.Width(width).Render("Lesson: "+sc.Lesson) + "\n\n")
		}

		if m.state == statePlaying {
			b.WriteString(m.renderTools(sc))
		} else {
			b.WriteString(m.renderBreakdown())
		}

	case stateGameOver:
		b.WriteString(m.renderGameOver())
	}

	if m.gameLog != "" {
		b.WriteString("\n" + titleStyle.Render("LOG") + "\n" + m.gameLog)
	}
	return b.String()
}

func (m model) renderTools(sc catalog.Scenario) string {
	var b strings.Builder
	st := m.session.State()
	fmt.Fprintf(&b, "%s's turn: choose up to %d tools\n", st.ActivePlayer, scoring.MaxSelection)
	if st.LastPlayer() && len(st.Players) > 1 {
		b.WriteString(helpStyle.Render("Last turn of the round") + "\n")
	}
	b.WriteString("\n")
	for i, t := range m.session.Catalog().Tools() {
		star := " "
		if m.showHint && sc.Suggests(t.ID) {
			star = "★"
		}
		fmt.Fprintf(&b, "%s %2d. %s %-22s %d pts  %s\n", star, i+1, badge(t.Power), t.ID, t.Points, t.Effect)
	}
	b.WriteString("\n" + helpStyle.Render(fmt.Sprintf("%s Soft  %s Hard  %s Smart",
		badge(catalog.Soft), badge(catalog.Hard), badge(catalog.Smart))) + "\n")
	return b.String()
}

func (m model) renderBreakdown() string {
	bd, err := m.session.Breakdown()
	if err != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("SCORING") + "\n")
	fmt.Fprintf(&b, "Base points:   %d\n", bd.Base)
	if bd.Synergy > 0 {
		matched := make([]string, len(bd.Matched))
		for i, id := range bd.Matched {
			matched[i] = string(id)
		}
		fmt.Fprintf(&b, "Synergy bonus: +%d (%s)\n", bd.Synergy, strings.Join(matched, ", "))
	}
	if bd.Variety > 0 {
		fmt.Fprintf(&b, "Variety bonus: +%d (Soft, Hard and Smart)\n", bd.Variety)
	}
	fmt.Fprintf(&b, "Round total:   %d\n\n", bd.Total)

	cat := m.session.Catalog()
	for _, t := range bd.Tools {
		fmt.Fprintf(&b, "%2d. %s %s (%s)\n", cat.Index(t.ID)+1, badge(t.Power), t.ID, t.Power)
	}
	if bd.Token != "" {
		b.WriteString("\n" + tokenStyle.Render(bd.Token+" earned!") + "\n")
	}
	b.WriteString("\n" + titleStyle.Render("REFLECTION") + "\n" + bd.Prompt + "\n")
	return b.String()
}

func (m model) renderGameOver() string {
	var b strings.Builder
	sum := m.summary
	b.WriteString(titleStyle.Render("GAME OVER") + "\n\n")

	fmt.Fprintf(&b, "%-18s %6s %6s %6s %6s\n", "Player", "Base", "Tokens", "Bonus", "Final")
	for _, r := range sum.Rows {
		fmt.Fprintf(&b, "%-18s %6d %6d %6d %6d\n", r.Player, r.BasePoints, r.TokenCount, r.TokenBonus, r.FinalScore)
	}

	if len(sum.Rows) > 0 {
		w := sum.Rows[0]
		winner := "Winner: " + sum.Winner
		if len(sum.Tied) > 0 {
			winner += " (tied with " + strings.Join(sum.Tied, ", ") + ")"
		}
		b.WriteString("\n" + tokenStyle.Render(winner) + "\n")
		fmt.Fprintf(&b, "Base %d + tokens %d x %d = %d\n", w.BasePoints, w.TokenCount, scoring.TokenPointValue, w.FinalScore)
	}

	for _, r := range sum.Rows {
		b.WriteString("\n" + titleStyle.Render(r.Player) + "\n")
		fmt.Fprintf(&b, "Round scores: %v\n", r.RoundScores)
		for _, tok := range r.Tokens {
			b.WriteString("  " + tokenStyle.Render(tok) + "\n")
		}
		if len(r.Reflections) == 0 {
			b.WriteString(helpStyle.Render("No reflections recorded") + "\n")
		}
		for _, ref := range r.Reflections {
			b.WriteString(reflectionStyle.Render(fmt.Sprintf("Round %d: %s", ref.Round, ref.Text)) + "\n")
		}
	}

	growth := m.opts.Profile.GrowthTurns(m.session.Turns())
	if len(m.opts.Profile.Growth) > 0 {
		fmt.Fprintf(&b, "\nGrowth tools used in %d turns.\n", growth)
	}

	b.WriteString("\n" + titleStyle.Render("KEY LESSONS") + "\n")
	for _, l := range m.session.Catalog().KeyLessons() {
		b.WriteString("- " + l + "\n")
	}

	if m.journalPath != "" {
		b.WriteString("\n" + helpStyle.Render("Journal saved to "+m.journalPath) + "\n")
	}
	return b.String()
}

func (m model) renderState() string {
	st := m.session.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("STATUS") + "\n")
	if st.Phase == engine.PhaseGameOver {
		b.WriteString("Finished\n\n")
	} else {
		fmt.Fprintf(&b, "Round %d of %d\nPlaying: %s\n\n", st.Round, st.MaxRounds, st.ActivePlayer)
	}

	b.WriteString(titleStyle.Render("STANDINGS") + "\n")
	for _, p := range st.Players {
		fmt.Fprintf(&b, "%s: %d pts, %d tokens\n", p.Name, p.InfluencePoints, p.TokenCount())
	}
	b.WriteString("\n")

	prof := m.opts.Profile
	if len(prof.Strengths)+len(prof.Growth) > 0 || prof.Focus != "" {
		b.WriteString(titleStyle.Render("MY PROFILE") + "\n")
		if len(prof.Strengths) > 0 {
			b.WriteString("Strengths:\n")
			for _, id := range prof.Strengths {
				b.WriteString("- " + string(id) + "\n")
			}
		}
		if len(prof.Growth) > 0 {
			b.WriteString("Growth:\n")
			for _, id := range prof.Growth {
				b.WriteString("- " + string(id) + "\n")
			}
		}
		if prof.Focus != "" {
			b.WriteString("\nFocus: " + prof.Focus + "\n")
		}
		if prof.Style != "" {
			b.WriteString("\nStyle: " + prof.Style + "\n")
		}
	}

	stateWidth := int(float64(m.width) * 0.25)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(b.String())
}
