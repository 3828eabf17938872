package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/state"
)

// Run starts the session, takes over the terminal and blocks until the user
// quits or ctx is cancelled. Warnings logged on bus appear in the status
// line; bus may be nil.
func Run(ctx context.Context, b *state.Browser, bus *events.EventBus) error {
	changes := make(chan struct{}, 1)
	unsubscribe := b.OnChange(func(state.ViewModel) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if err := b.Start(); err != nil {
		return err
	}

	model := NewModel(b, changes)
	if bus != nil {
		logs := bus.Subscribe(events.EventLog)
		defer bus.Unsubscribe(events.EventLog, logs)
		model = model.WithLogs(logs)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
