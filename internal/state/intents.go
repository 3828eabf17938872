package state

import "errors"

// Intent is a user action forwarded by a renderer.
type Intent interface {
	apply(b *Browser) error
}

type (
	// ToggleModeIntent flips between public and private.
	ToggleModeIntent struct{}
	// RefreshIntent reloads folders for the current mode.
	RefreshIntent struct{}
	// SelectFolderIntent selects a folder, or collapses it if already selected.
	SelectFolderIntent struct{ ID string }
	// SetFilterIntent filters displayed files by type ("all" for none).
	SetFilterIntent struct{ Type string }
	// SetSortKeyIntent orders displayed files by a key (SortNone for server order).
	SetSortKeyIntent struct{ Key SortKey }
	// SetSortDirectionIntent sets ascending or descending order.
	SetSortDirectionIntent struct{ Direction Direction }
)

func (ToggleModeIntent) apply(b *Browser) error         { return b.ToggleMode() }
func (RefreshIntent) apply(b *Browser) error            { return b.Refresh() }
func (i SelectFolderIntent) apply(b *Browser) error     { return b.SelectFolder(i.ID) }
func (i SetFilterIntent) apply(b *Browser) error        { return b.SetFilter(i.Type) }
func (i SetSortKeyIntent) apply(b *Browser) error       { return b.SetSortKey(i.Key) }
func (i SetSortDirectionIntent) apply(b *Browser) error { return b.SetSortDirection(i.Direction) }

// Dispatch applies a renderer intent.
func (b *Browser) Dispatch(intent Intent) error {
	if intent == nil {
		return errors.New("nil intent")
	}
	return intent.apply(b)
}
