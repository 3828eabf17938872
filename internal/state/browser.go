package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/models"
)

// ErrClosed is returned by Browser methods after Close.
var ErrClosed = errors.New("browser is closed")

// Fetcher retrieves folder and file listings. *api.Client implements it.
type Fetcher interface {
	ListFolders(ctx context.Context, mode models.AccessMode) ([]models.Folder, error)
	ListFolderFiles(ctx context.Context, mode models.AccessMode, folderID string) ([]models.FileEntry, error)
}

// Options configures a Browser. Zero values are usable.
type Options struct {
	Mode           models.AccessMode
	EventBus       *events.EventBus
	Logger         *logging.Logger
	RequestTimeout time.Duration // per fetch; 0 means no extra bound
}

// Browser drives a browse session. Intents and fetch completions are
// applied one at a time under a single lock; fetches run in their own
// goroutines and results are matched to their stream by token.
// Thread-safe for concurrent access.
//
// Events and OnChange callbacks are delivered after the lock is released,
// so two transitions racing on different goroutines may be observed out of
// order. Treat them as hints to re-read View, which is always current.
type Browser struct {
	fetcher  Fetcher
	eventBus *events.EventBus
	logger   *logging.Logger
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	snap      Snapshot
	closed    bool
	listeners map[int]func(ViewModel)
	nextID    int
}

// NewBrowser creates a Browser in the Idle state. Call Start to load folders.
func NewBrowser(fetcher Fetcher, opts Options) *Browser {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Browser{
		fetcher:   fetcher,
		eventBus:  opts.EventBus,
		logger:    logger,
		timeout:   opts.RequestTimeout,
		ctx:       ctx,
		cancel:    cancel,
		snap:      NewSnapshot(opts.Mode),
		listeners: make(map[int]func(ViewModel)),
	}
}

// Start issues the initial folder fetch for the configured mode.
func (b *Browser) Start() error {
	return b.update(func(s Snapshot) (Snapshot, []events.Event, *FetchRequest, error) {
		next, req := s.BeginFolderLoad()
		return next, b.folderLoadEvents(s, next, req, false), &req, nil
	})
}

// ToggleMode flips between public and private and reloads folders.
func (b *Browser) ToggleMode() error {
	return b.update(func(s Snapshot) (Snapshot, []events.Event, *FetchRequest, error) {
		next, req := s.ToggleMode()
		return next, b.folderLoadEvents(s, next, req, true), &req, nil
	})
}

// Refresh reloads folders for the current mode.
func (b *Browser) Refresh() error {
	return b.update(func(s Snapshot) (Snapshot, []events.Event, *FetchRequest, error) {
		next, req := s.Refresh()
		return next, b.folderLoadEvents(s, next, req, false), &req, nil
	})
}

// SelectFolder selects a folder and loads its files, or collapses it if it
// is already selected.
func (b *Browser) SelectFolder(id string) error {
	return b.update(func(s Snapshot) (Snapshot, []events.Event, *FetchRequest, error) {
		next, req, err := s.SelectFolder(id)
		if err != nil {
			return s, nil, nil, err
		}
		evs := []events.Event{NewSelectionChangedEvent(id, next.HasSelection)}
		if req != nil {
			evs = append(evs, NewFilesLoadingEvent(id, req.Token))
		}
		return next, evs, req, nil
	})
}

// SetFilter changes the displayed file type. Never issues a request.
func (b *Browser) SetFilter(fileType string) error {
	return b.update(func(s Snapshot) (Snapshot, []events.Event, *FetchRequest, error) {
		next := s.SetFilter(fileType)
		return next, projectionEvents(s, next), nil, nil
	})
}

// SetSortKey changes the sort key. Never issues a request.
func (b *Browser) SetSortKey(key SortKey) error {
	return b.update(func(s Snapshot) (Snapshot, []events.Event, *FetchRequest, error) {
		next, err := s.SetSortKey(key)
		if err != nil {
			return s, nil, nil, err
		}
		return next, projectionEvents(s, next), nil, nil
	})
}

// SetSortDirection changes the sort direction. Never issues a request.
func (b *Browser) SetSortDirection(dir Direction) error {
	return b.update(func(s Snapshot) (Snapshot, []events.Event, *FetchRequest, error) {
		next, err := s.SetSortDirection(dir)
		if err != nil {
			return s, nil, nil, err
		}
		return next, projectionEvents(s, next), nil, nil
	})
}

// Snapshot returns the current state.
func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// View returns the current view model.
func (b *Browser) View() ViewModel {
	return b.Snapshot().View()
}

// OnChange registers fn to be called with the new view model after every
// applied change. fn runs on the goroutine that made the change and must
// not block. The returned function unregisters fn.
func (b *Browser) OnChange(fn func(ViewModel)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Wait blocks until every issued fetch has completed.
func (b *Browser) Wait() {
	b.wg.Wait()
}

// Close cancels in-flight fetches and rejects further intents. Results that
// arrive after Close are dropped.
func (b *Browser) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}

type transition func(Snapshot) (Snapshot, []events.Event, *FetchRequest, error)

// update applies t under the lock, publishes events and notifies listeners
// outside the lock, then starts any fetch the transition asked for.
func (b *Browser) update(t transition) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	prev := b.snap
	next, evs, req, err := t(prev)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.snap = next
	if req != nil {
		b.wg.Add(1)
	}
	listeners := b.listenersLocked(prev, next)
	b.mu.Unlock()

	b.publish(evs)
	notify(listeners, next)
	if req != nil {
		go b.fetch(*req)
	}
	return nil
}

func (b *Browser) fetch(req FetchRequest) {
	defer b.wg.Done()

	ctx := b.ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	switch req.Stream {
	case FolderStream:
		folders, err := b.fetcher.ListFolders(ctx, req.Mode)
		b.complete(req, func(s Snapshot) (Snapshot, bool) {
			return s.ApplyFolderResult(req.Token, folders, err)
		}, func(s Snapshot) events.Event {
			if s.Folders.IsFailed() {
				return NewFoldersFailedEvent(req.Mode, s.Folders.Message, req.Token)
			}
			return NewFoldersLoadedEvent(req.Mode, len(s.Folders.Value), req.Token)
		})
	case FileStream:
		files, err := b.fetcher.ListFolderFiles(ctx, req.Mode, req.FolderID)
		b.complete(req, func(s Snapshot) (Snapshot, bool) {
			return s.ApplyFileResult(req.Token, files, err)
		}, func(s Snapshot) events.Event {
			if s.Files.IsFailed() {
				return NewFilesFailedEvent(req.FolderID, s.Files.Message, req.Token)
			}
			return NewFilesLoadedEvent(req.FolderID, len(s.Files.Value), req.Token)
		})
	}
}

func (b *Browser) complete(req FetchRequest, apply func(Snapshot) (Snapshot, bool), settled func(Snapshot) events.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	prev := b.snap
	next, applied := apply(prev)
	if !applied {
		current := prev.FolderToken
		if req.Stream == FileStream {
			current = prev.FileToken
		}
		b.mu.Unlock()

		b.logger.Debug().
			Str("stream", req.Stream.String()).
			Uint64("request_token", req.Token).
			Uint64("current_token", current).
			Msg("discarding stale response")
		b.publish([]events.Event{NewStaleResponseDiscardedEvent(req.Stream, req.Token, current)})
		return
	}
	b.snap = next
	listeners := b.listenersLocked(prev, next)
	b.mu.Unlock()

	ev := settled(next)
	switch e := ev.(type) {
	case *FoldersFailedEvent:
		b.logger.Warn().Str("mode", e.Mode.String()).Str("error", e.Message).Msg("folder load failed")
	case *FilesFailedEvent:
		b.logger.Warn().Str("folder_id", e.FolderID).Str("error", e.Message).Msg("file load failed")
	case *FoldersLoadedEvent:
		b.logger.Debug().Str("mode", e.Mode.String()).Int("count", e.Count).Msg("folders loaded")
	case *FilesLoadedEvent:
		b.logger.Debug().Str("folder_id", e.FolderID).Int("count", e.Count).Msg("files loaded")
	}
	b.publish([]events.Event{ev})
	notify(listeners, next)
}

func (b *Browser) folderLoadEvents(prev, next Snapshot, req FetchRequest, modeChanged bool) []events.Event {
	var evs []events.Event
	if modeChanged {
		b.logger.Info().Str("mode", next.Mode.String()).Msg("access mode changed")
		evs = append(evs, NewModeChangedEvent(next.Mode))
	}
	if prev.HasSelection {
		evs = append(evs, NewSelectionChangedEvent(prev.SelectedID, false))
	}
	return append(evs, NewFoldersLoadingEvent(req.Mode, req.Token))
}

func projectionEvents(prev, next Snapshot) []events.Event {
	if prev.Projection == next.Projection {
		return nil
	}
	return []events.Event{NewProjectionChangedEvent(next.Projection)}
}

// listenersLocked returns the listeners to notify, or nil when nothing
// changed. Caller holds b.mu.
func (b *Browser) listenersLocked(prev, next Snapshot) []func(ViewModel) {
	if prev.Revision == next.Revision || len(b.listeners) == 0 {
		return nil
	}
	out := make([]func(ViewModel), 0, len(b.listeners))
	for _, fn := range b.listeners {
		out = append(out, fn)
	}
	return out
}

func (b *Browser) publish(evs []events.Event) {
	if b.eventBus == nil {
		return
	}
	for _, ev := range evs {
		b.eventBus.Publish(ev)
	}
}

func notify(listeners []func(ViewModel), s Snapshot) {
	if len(listeners) == 0 {
		return
	}
	view := s.View()
	for _, fn := range listeners {
		fn(view)
	}
}
