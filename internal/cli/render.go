package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rescale/rescale-browse/internal/constants"
	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/progress"
	"github.com/rescale/rescale-browse/internal/state"
)

// newSpinner returns the loading indicator used while waiting on a fetch.
var newSpinner = func() progress.Reporter {
	return progress.NewCLIProgress()
}

// awaitSettled blocks until settled holds for the browser's view model. The
// predicate is re-checked after every session event and once after
// subscribing, so a load that finished before the call is not missed.
func awaitSettled(ctx context.Context, bus *events.EventBus, b *state.Browser, settled func(state.ViewModel) bool) (state.ViewModel, error) {
	ch := bus.SubscribeAll()
	defer bus.UnsubscribeAll(ch)

	ctx, cancel := context.WithTimeout(ctx, constants.WaitForLoadTimeout)
	defer cancel()

	for {
		if view := b.View(); settled(view) {
			return view, nil
		}
		select {
		case _, ok := <-ch:
			if !ok {
				return b.View(), fmt.Errorf("event bus closed while waiting for load")
			}
		case <-ctx.Done():
			return b.View(), fmt.Errorf("waiting for load: %w", ctx.Err())
		}
	}
}

// printFolders writes folders as a plain text table.
func printFolders(w io.Writer, folders []models.Folder) {
	idWidth := len("ID")
	nameWidth := len("NAME")
	for _, f := range folders {
		idWidth = max(idWidth, len(f.ID))
		nameWidth = max(nameWidth, len(f.Name))
	}
	tw := constants.TimestampColumnWidth

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n", idWidth, "ID", nameWidth, "NAME", tw, "CREATED", "UPDATED")
	for _, f := range folders {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n", idWidth, f.ID, nameWidth, f.Name, tw, f.Created.Raw, f.Updated.Raw)
	}
}

// printFiles writes files as a plain text table.
func printFiles(w io.Writer, files []models.FileEntry) {
	nameWidth := constants.NameColumnMinWidth
	typeWidth := len("TYPE")
	for _, f := range files {
		nameWidth = max(nameWidth, len(f.Name))
		typeWidth = max(typeWidth, len(f.Type))
	}
	tw := constants.TimestampColumnWidth

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n", nameWidth, "NAME", typeWidth, "TYPE", tw, "CREATED", "UPDATED")
	for _, f := range files {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n", nameWidth, f.Name, typeWidth, f.Type, tw, f.Created.Raw, f.Updated.Raw)
	}
}

// describeProjection summarizes filter and sort settings for a footer line.
func describeProjection(p state.ProjectionSettings) string {
	var parts []string
	if p.FilterType != state.FilterAll {
		parts = append(parts, "type="+p.FilterType)
	}
	if p.SortKey != state.SortNone {
		parts = append(parts, fmt.Sprintf("sorted by %s %s", p.SortKey, p.Direction))
	}
	return strings.Join(parts, ", ")
}
