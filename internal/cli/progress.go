package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/soractl/internal/models"
)

const (
	pollInterval = 5 * time.Second
	pollTimeout  = 30 * time.Second
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// statusChecker is the live status read the progress view polls.
type statusChecker interface {
	CheckStatus(ctx context.Context, id string) (*models.Video, error)
}

// tickMsg triggers a status poll.
type tickMsg time.Time

// videoUpdateMsg carries the result of one poll.
type videoUpdateMsg struct {
	video *models.Video
	err   error
}

// progressModel is the bubbletea model for a rendering job.
type progressModel struct {
	ctx      context.Context
	checker  statusChecker
	videoID  string
	video    *models.Video
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

func newProgressModel(ctx context.Context, checker statusChecker, video *models.Video) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		ctx:      ctx,
		checker:  checker,
		videoID:  video.ID,
		video:    video,
		progress: prog,
		theme:    defaultTheme,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchVideo()

	case videoUpdateMsg:
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, tea.Quit
		}

		m.video = msg.video

		switch m.video.Status {
		case models.StatusCompleted:
			m.done = true
			return m, tea.Quit
		case models.StatusFailed:
			m.done = true
			m.err = generationError(m.video)
			return m, tea.Quit
		}

		return m, tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	if m.video == nil {
		return "Loading video status...\n"
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.video.Status))
	bar := m.progress.ViewAs(progressFraction(m.video))
	pct := fmt.Sprintf("%3d%%", m.video.ProgressPercent())
	hint := m.theme.hintStyle().Render("Press Ctrl+C to stop watching")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, pct, hint)
}

func (m progressModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nVideo %s keeps rendering.\nUse 'soractl status %s --watch' to resume.\n",
			m.videoID, m.videoID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Generation failed: %s\n", m.err))
	}

	out := m.theme.completedStyle().Render("✓ Completed") + "\n"
	out += m.theme.hintStyle().Render(fmt.Sprintf("Use 'soractl download %s' within the download window.", m.videoID)) + "\n"
	return out
}

// fetchVideo polls in a command so Update never blocks.
func (m progressModel) fetchVideo() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, pollTimeout)
		defer cancel()

		video, err := m.checker.CheckStatus(ctx, m.videoID)
		return videoUpdateMsg{video: video, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func progressFraction(v *models.Video) float64 {
	pct := v.ProgressPercent()
	switch {
	case pct <= 0:
		return 0
	case pct >= 100:
		return 1
	}
	return float64(pct) / 100
}

func generationError(v *models.Video) error {
	if v.Error != nil && v.Error.Message != "" {
		return errors.New(v.Error.Message)
	}
	return errors.New("video generation failed")
}

// RunVideoProgress watches a job until it reaches a terminal state.
// Stopping the watch with Ctrl+C is not an error; a failed job is.
func RunVideoProgress(ctx context.Context, checker statusChecker, video *models.Video) error {
	if video.Status.Terminal() {
		return nil
	}

	model := newProgressModel(ctx, checker, video)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
