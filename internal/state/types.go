package state

import (
	"time"

	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/models"
)

// ModeChangedEvent is published when the access mode is toggled.
type ModeChangedEvent struct {
	events.BaseEvent
	Mode models.AccessMode
}

// FoldersLoadingEvent is published when a folder fetch is issued.
type FoldersLoadingEvent struct {
	events.BaseEvent
	Mode  models.AccessMode
	Token uint64
}

// FoldersLoadedEvent is published when a folder fetch succeeds.
type FoldersLoadedEvent struct {
	events.BaseEvent
	Mode  models.AccessMode
	Count int
	Token uint64
}

// FoldersFailedEvent is published when a folder fetch fails.
type FoldersFailedEvent struct {
	events.BaseEvent
	Mode    models.AccessMode
	Message string
	Token   uint64
}

// SelectionChangedEvent is published when a folder is selected or collapsed.
type SelectionChangedEvent struct {
	events.BaseEvent
	FolderID string
	Selected bool
}

// FilesLoadingEvent is published when a file fetch is issued.
type FilesLoadingEvent struct {
	events.BaseEvent
	FolderID string
	Token    uint64
}

// FilesLoadedEvent is published when a file fetch succeeds.
type FilesLoadedEvent struct {
	events.BaseEvent
	FolderID string
	Count    int
	Token    uint64
}

// FilesFailedEvent is published when a file fetch fails.
type FilesFailedEvent struct {
	events.BaseEvent
	FolderID string
	Message  string
	Token    uint64
}

// ProjectionChangedEvent is published when the filter or sort changes.
type ProjectionChangedEvent struct {
	events.BaseEvent
	Projection ProjectionSettings
}

// StaleResponseDiscardedEvent is published when a fetch result arrives after
// its stream has moved on.
type StaleResponseDiscardedEvent struct {
	events.BaseEvent
	Stream       Stream
	Token        uint64
	CurrentToken uint64
}

func base(t events.EventType) events.BaseEvent {
	return events.BaseEvent{EventType: t, Time: time.Now()}
}

// NewModeChangedEvent creates a new ModeChangedEvent.
func NewModeChangedEvent(mode models.AccessMode) *ModeChangedEvent {
	return &ModeChangedEvent{BaseEvent: base(events.EventModeChanged), Mode: mode}
}

// NewFoldersLoadingEvent creates a new FoldersLoadingEvent.
func NewFoldersLoadingEvent(mode models.AccessMode, token uint64) *FoldersLoadingEvent {
	return &FoldersLoadingEvent{BaseEvent: base(events.EventFoldersLoading), Mode: mode, Token: token}
}

// NewFoldersLoadedEvent creates a new FoldersLoadedEvent.
func NewFoldersLoadedEvent(mode models.AccessMode, count int, token uint64) *FoldersLoadedEvent {
	return &FoldersLoadedEvent{BaseEvent: base(events.EventFoldersLoaded), Mode: mode, Count: count, Token: token}
}

// NewFoldersFailedEvent creates a new FoldersFailedEvent.
func NewFoldersFailedEvent(mode models.AccessMode, message string, token uint64) *FoldersFailedEvent {
	return &FoldersFailedEvent{BaseEvent: base(events.EventFoldersFailed), Mode: mode, Message: message, Token: token}
}

// NewSelectionChangedEvent creates a new SelectionChangedEvent.
func NewSelectionChangedEvent(folderID string, selected bool) *SelectionChangedEvent {
	return &SelectionChangedEvent{BaseEvent: base(events.EventSelectionChanged), FolderID: folderID, Selected: selected}
}

// NewFilesLoadingEvent creates a new FilesLoadingEvent.
func NewFilesLoadingEvent(folderID string, token uint64) *FilesLoadingEvent {
	return &FilesLoadingEvent{BaseEvent: base(events.EventFilesLoading), FolderID: folderID, Token: token}
}

// NewFilesLoadedEvent creates a new FilesLoadedEvent.
func NewFilesLoadedEvent(folderID string, count int, token uint64) *FilesLoadedEvent {
	return &FilesLoadedEvent{BaseEvent: base(events.EventFilesLoaded), FolderID: folderID, Count: count, Token: token}
}

// NewFilesFailedEvent creates a new FilesFailedEvent.
func NewFilesFailedEvent(folderID, message string, token uint64) *FilesFailedEvent {
	return &FilesFailedEvent{BaseEvent: base(events.EventFilesFailed), FolderID: folderID, Message: message, Token: token}
}

// NewProjectionChangedEvent creates a new ProjectionChangedEvent.
func NewProjectionChangedEvent(p ProjectionSettings) *ProjectionChangedEvent {
	return &ProjectionChangedEvent{BaseEvent: base(events.EventProjectionChanged), Projection: p}
}

// NewStaleResponseDiscardedEvent creates a new StaleResponseDiscardedEvent.
func NewStaleResponseDiscardedEvent(stream Stream, token, current uint64) *StaleResponseDiscardedEvent {
	return &StaleResponseDiscardedEvent{
		BaseEvent:    base(events.EventStaleResponseDiscarded),
		Stream:       stream,
		Token:        token,
		CurrentToken: current,
	}
}
