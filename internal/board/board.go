// Package board is the terminal roadmap view: a bubbletea program that lists
// a learner's skills and lets them record progress and completions.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skilltrack/internal/roadmap"
	"github.com/abhisek/skilltrack/internal/ui/components"
	"github.com/abhisek/skilltrack/internal/ui/layout"
	"github.com/abhisek/skilltrack/internal/ui/theme"
)

// Service is the subset of roadmap.Service the board drives.
type Service interface {
	Get(ctx context.Context, userID string) (*roadmap.Tracker, error)
	UpdateProgress(ctx context.Context, userID, skillName string, progress int) (*roadmap.Tracker, error)
	MarkSkillComplete(ctx context.Context, userID string, req roadmap.CompleteRequest) (*roadmap.Tracker, error)
	Refresh(ctx context.Context, userID string) (*roadmap.Tracker, []roadmap.SyncResult, error)
}

const (
	progressStep = 10
	callTimeout  = 15 * time.Second
)

type mode int

const (
	modeBrowse mode = iota
	modeProgress
	modeComplete
)

// trackerMsg carries the result of a service call back into Update.
type trackerMsg struct {
	tracker *roadmap.Tracker
	status  string
	err     error
}

// Model is the board's bubbletea model.
type Model struct {
	svc    Service
	userID string

	tracker *roadmap.Tracker
	cursor  int
	offset  int
	mode    mode
	input   components.TextInput
	status  string
	err     error
	loading bool

	width  int
	height int
}

// New creates a board for userID.
func New(svc Service, userID string) Model {
	return Model{svc: svc, userID: userID, loading: true, width: layout.MinWidth, height: layout.MinHeight}
}

// Init loads the tracker.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Tracker returns the tracker currently on screen.
func (m Model) Tracker() *roadmap.Tracker { return m.tracker }

// Cursor returns the index of the selected skill.
func (m Model) Cursor() int { return m.cursor }

// Err returns the last service error, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case trackerMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.tracker = msg.tracker
			m.status = msg.status
			m.clampCursor()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "r":
		m.loading = true
		return m, m.refresh()
	}

	skill, ok := m.selected()
	if !ok || skill.Status != roadmap.StatusUnlocked {
		return m, nil
	}

	switch msg.String() {
	case "+", "=", "right", "l":
		return m, m.setProgress(skill.Name, min(skill.Progress+progressStep, 100))
	case "-", "left", "h":
		return m, m.setProgress(skill.Name, max(skill.Progress-progressStep, 0))
	case "p":
		m.mode = modeProgress
		m.input = components.NewTextInput("Progress for "+skill.Name+":", "0-100", true, 3)
	case "c":
		m.mode = modeComplete
		m.input = components.NewTextInput("Where did you learn "+skill.Name+"?", "course, book, project...", false, 200)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.err = nil
		return m, nil
	case "enter":
		skill, ok := m.selected()
		if !ok {
			m.mode = modeBrowse
			return m, nil
		}
		switch m.mode {
		case modeProgress:
			n, err := m.input.NumericValue()
			if err != nil || n > 100 {
				m.err = errors.New("progress must be a number from 0 to 100")
				return m, nil
			}
			m.mode = modeBrowse
			return m, m.setProgress(skill.Name, n)
		case modeComplete:
			desc := m.input.Value()
			if desc == "" {
				m.err = errors.New("tell us where you learned it")
				return m, nil
			}
			m.mode = modeBrowse
			return m, m.complete(roadmap.CompleteRequest{
				SkillName:         skill.Name,
				Source:            roadmap.SourceExternal,
				SourceDescription: desc,
			})
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	if m.tracker == nil {
		return
	}
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := 0
	if m.tracker != nil {
		n = len(m.tracker.Roadmap)
	}
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
}

func (m Model) selected() (roadmap.Skill, bool) {
	if m.tracker == nil || m.cursor >= len(m.tracker.Roadmap) {
		return roadmap.Skill{}, false
	}
	return m.tracker.Roadmap[m.cursor], true
}

func (m Model) load() tea.Cmd {
	svc, userID := m.svc, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		t, err := svc.Get(ctx, userID)
		return trackerMsg{tracker: t, err: err}
	}
}

func (m Model) refresh() tea.Cmd {
	svc, userID := m.svc, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		t, results, err := svc.Refresh(ctx, userID)
		return trackerMsg{tracker: t, status: syncStatus(results), err: err}
	}
}

func (m Model) setProgress(skill string, progress int) tea.Cmd {
	svc, userID := m.svc, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		t, err := svc.UpdateProgress(ctx, userID, skill, progress)
		return trackerMsg{tracker: t, status: fmt.Sprintf("%s at %d%%", skill, progress), err: err}
	}
}

func (m Model) complete(req roadmap.CompleteRequest) tea.Cmd {
	svc, userID := m.svc, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		t, err := svc.MarkSkillComplete(ctx, userID, req)
		return trackerMsg{tracker: t, status: req.SkillName + " completed", err: err}
	}
}

func syncStatus(results []roadmap.SyncResult) string {
	n := 0
	for _, r := range results {
		if r.SkillCompleted {
			n++
		}
	}
	if n == 0 {
		return "Refreshed"
	}
	return fmt.Sprintf("Refreshed, %d skill(s) completed from badges", n)
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

func (m Model) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	title := "Roadmap"
	progress, completed, total := 0, 0, 0
	if t := m.tracker; t != nil {
		title = t.CareerGoalLabel
		if title == "" {
			title = t.CareerGoal.DisplayName()
		}
		progress, completed, total = t.OverallProgress, t.CompletedCount(), len(t.Roadmap)
	}

	header := layout.RenderHeader(title, progress, completed, total, m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	return layout.RenderFrame(header, m.renderBody(bodyHeight), footer, m.width, m.height)
}

func (m Model) hints() []layout.KeyHint {
	if m.mode != modeBrowse {
		return []layout.KeyHint{{Key: "enter", Description: "save"}, {Key: "esc", Description: "cancel"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "move"},
		{Key: "+/-", Description: "progress"},
		{Key: "p", Description: "set"},
		{Key: "c", Description: "complete"},
		{Key: "r", Description: "refresh"},
		{Key: "q", Description: "quit"},
	}
}

func (m Model) renderBody(height int) string {
	var lines []string
	switch {
	case m.tracker == nil && m.loading:
		lines = append(lines, theme.Hint.Render("  Loading roadmap..."))
	case m.tracker == nil:
		lines = append(lines, theme.Hint.Render("  No roadmap yet. Run `skilltrack roadmap init` first."))
	default:
		lines = append(lines, m.renderSkills(height-3)...)
		if m.tracker.IsCompleted {
			lines = append(lines, "", theme.Completed.Render("  Roadmap complete! Verification "+m.tracker.VerificationID))
		}
	}

	lines = append(lines, "")
	switch {
	case m.mode != modeBrowse:
		lines = append(lines, "  "+m.input.View())
	case m.err != nil:
		lines = append(lines, "  "+theme.ErrorText.Render(m.err.Error()))
	case m.status != "":
		lines = append(lines, "  "+theme.Hint.Render(m.status))
	}
	if m.mode != modeBrowse && m.err != nil {
		lines = append(lines, "  "+theme.ErrorText.Render(m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) adjustScroll(visible int) {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m Model) renderSkills(visible int) []string {
	visible = max(visible, 1)
	m.adjustScroll(visible)

	nameWidth := 0
	for _, s := range m.tracker.Roadmap {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
	}
	barWidth := max(m.width-nameWidth-16, 10)

	var lines []string
	for i := m.offset; i < len(m.tracker.Roadmap) && i < m.offset+visible; i++ {
		s := m.tracker.Roadmap[i]
		cursor := "  "
		nameStyle := theme.Unselected
		if i == m.cursor {
			cursor = theme.Selected.Render("▸ ")
			nameStyle = theme.Selected
		}
		icon := statusStyle(s.Status).Render(s.Status.Icon())
		name := nameStyle.Render(s.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(s.Name)))
		bar := components.NewProgressBar("", s.Progress, true, barWidth).View()
		lines = append(lines, cursor+icon+" "+name+"  "+bar)
	}
	return lines
}

func statusStyle(s roadmap.Status) lipgloss.Style {
	switch s {
	case roadmap.StatusCompleted:
		return theme.Completed
	case roadmap.StatusUnlocked:
		return theme.Unlocked
	default:
		return theme.Locked
	}
}
