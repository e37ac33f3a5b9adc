package userview

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-view/pkg/logger"
)

// loadedMsg carries the fetch result back into the program loop.
type loadedMsg struct {
	mountID string
	result  Result
}

// Model is the view as a Bubble Tea model. Init issues the single fetch,
// Update applies its result on the program's event loop, View renders.
type Model struct {
	ctx          context.Context
	loader       Loader
	log          *zap.Logger
	mountID      string
	state        State
	quitOnSettle bool
	sanitize     func([]string) []string
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// QuitOnSettle ends the program as soon as the view settles.
func QuitOnSettle() ModelOption {
	return func(m *Model) {
		m.quitOnSettle = true
	}
}

// WithSanitizer filters rendered lines before they reach the terminal.
func WithSanitizer(f func([]string) []string) ModelOption {
	return func(m *Model) {
		m.sanitize = f
	}
}

// NewModel mounts a model in Loading. ctx bounds the fetch; once it is done
// the model treats itself as unmounted and ignores late results.
func NewModel(ctx context.Context, loader Loader, log *zap.Logger, opts ...ModelOption) Model {
	id := uuid.New().String()
	ctx = logger.WithMountID(ctx, id)

	m := Model{
		ctx:     ctx,
		loader:  loader,
		log:     logger.WithContext(ctx, log),
		mountID: id,
		state:   Loading{},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	ctx, loader, id := m.ctx, m.loader, m.mountID
	return func() tea.Msg {
		u, err := loader.LoadUser(ctx)
		return loadedMsg{mountID: id, result: Result{User: u, Err: err}}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.mountID != m.mountID || m.ctx.Err() != nil {
			m.log.Debug("dropping stale user result", zap.String("from_mount", msg.mountID))
			return m, nil
		}
		m.state = Transition(m.state, msg.result)
		m.log.Info("view settled", zap.String("state", string(m.state.Kind())))
		if m.quitOnSettle {
			return m, tea.Quit
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	lines := Lines(m.state)
	if m.sanitize != nil {
		lines = m.sanitize(lines)
	}
	return strings.Join(lines, "\n") + "\n"
}

// State returns the current lifecycle state.
func (m Model) State() State {
	return m.state
}

// MountID returns the mount ID.
func (m Model) MountID() string {
	return m.mountID
}
