package state

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rescale/rescale-browse/internal/api"
	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/events"
	"github.com/rescale/rescale-browse/internal/logging"
	"github.com/rescale/rescale-browse/internal/models"
)

// stubFetcher answers immediately from fixed data and records every call.
type stubFetcher struct {
	mu          sync.Mutex
	folders     map[models.AccessMode][]models.Folder
	files       map[string][]models.FileEntry
	folderErr   error
	fileErr     error
	folderCalls []models.AccessMode
	fileCalls   []string
}

func (f *stubFetcher) ListFolders(ctx context.Context, mode models.AccessMode) ([]models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folderCalls = append(f.folderCalls, mode)
	if f.folderErr != nil {
		return nil, f.folderErr
	}
	return f.folders[mode], nil
}

func (f *stubFetcher) ListFolderFiles(ctx context.Context, mode models.AccessMode, folderID string) ([]models.FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileCalls = append(f.fileCalls, folderID)
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	return f.files[folderID], nil
}

func (f *stubFetcher) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.folderCalls), len(f.fileCalls)
}

// pendingCall is a fetch held open until the test replies.
type pendingCall struct {
	mode     models.AccessMode
	folderID string
	reply    chan reply
}

type reply struct {
	folders []models.Folder
	files   []models.FileEntry
	err     error
}

// gatedFetcher hands every call to the test and blocks until it replies.
type gatedFetcher struct {
	calls chan *pendingCall
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *pendingCall, 16)}
}

func (f *gatedFetcher) wait(ctx context.Context, c *pendingCall) (reply, error) {
	f.calls <- c
	select {
	case r := <-c.reply:
		return r, r.err
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

func (f *gatedFetcher) ListFolders(ctx context.Context, mode models.AccessMode) ([]models.Folder, error) {
	r, err := f.wait(ctx, &pendingCall{mode: mode, reply: make(chan reply, 1)})
	return r.folders, err
}

func (f *gatedFetcher) ListFolderFiles(ctx context.Context, mode models.AccessMode, folderID string) ([]models.FileEntry, error) {
	r, err := f.wait(ctx, &pendingCall{mode: mode, folderID: folderID, reply: make(chan reply, 1)})
	return r.files, err
}

func (f *gatedFetcher) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch")
		return nil
	}
}

func newStub() *stubFetcher {
	return &stubFetcher{
		folders: map[models.AccessMode][]models.Folder{
			models.Public:  {{ID: "f1", Name: "Docs"}},
			models.Private: {{ID: "p1", Name: "Secret"}},
		},
		files: map[string][]models.FileEntry{
			"f1": {
				{Name: "a.txt", Type: "document"},
				{Name: "b.png", Type: "image"},
			},
		},
	}
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBrowser_FilterThenToggle(t *testing.T) {
	fetcher := newStub()
	b := NewBrowser(fetcher, Options{Mode: models.Public})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.Dispatch(SelectFolderIntent{ID: "f1"}))
	b.Wait()

	view := b.View()
	if !view.FileLoadState.IsLoaded() || len(view.DisplayedFiles) != 2 {
		t.Fatalf("files = %v, displayed %v", view.FileLoadState, view.DisplayedFiles)
	}

	mustDo(t, b.Dispatch(SetFilterIntent{Type: "image"}))
	view = b.View()
	want := []models.FileEntry{{Name: "b.png", Type: "image"}}
	if !reflect.DeepEqual(view.DisplayedFiles, want) {
		t.Errorf("displayed = %+v, want %+v", view.DisplayedFiles, want)
	}

	mustDo(t, b.Dispatch(ToggleModeIntent{}))
	view = b.View()
	if view.HasSelection {
		t.Error("selection should be cleared after toggle")
	}
	if len(view.DisplayedFiles) != 0 {
		t.Errorf("displayed = %v, want empty", view.DisplayedFiles)
	}
	if !view.FileLoadState.IsIdle() {
		t.Errorf("file state = %v, want idle", view.FileLoadState)
	}
	b.Wait()

	fetcher.mu.Lock()
	last := fetcher.folderCalls[len(fetcher.folderCalls)-1]
	fetcher.mu.Unlock()
	if last != models.Private {
		t.Errorf("last folder fetch mode = %v, want private", last)
	}
	if view := b.View(); view.Mode != models.Private || view.Folders[0].ID != "p1" {
		t.Errorf("after toggle: mode %v, folders %+v", view.Mode, view.Folders)
	}
}

func TestBrowser_FilterThenToggleOverHTTP(t *testing.T) {
	type seen struct{ path, auth string }
	var mu sync.Mutex
	var requests []seen

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, seen{r.URL.Path, r.Header.Get("Authorization")})
		mu.Unlock()
		switch r.URL.Path {
		case "/public-folders":
			w.Write([]byte(`[{"id":"f1","name":"Docs","created":"2024-01-01","updated":"2024-01-01"}]`))
		case "/public-folders/f1/files":
			w.Write([]byte(`[{"name":"a.txt","type":"document","created":"2024-01-01","updated":"2024-01-01"},
				{"name":"b.png","type":"image","created":"2024-01-02","updated":"2024-01-02"}]`))
		case "/private-folders":
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newAPIClient(t, srv.URL, "asd")
	b := NewBrowser(client, Options{Mode: models.Public})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.SelectFolder("f1"))
	b.Wait()
	mustDo(t, b.SetFilter("image"))

	if names := names(b.View().DisplayedFiles); !reflect.DeepEqual(names, []string{"b.png"}) {
		t.Fatalf("displayed = %v, want [b.png]", names)
	}

	mustDo(t, b.ToggleMode())
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	last := requests[len(requests)-1]
	if last.path != "/private-folders" || last.auth != "Bearer asd" {
		t.Errorf("last request = %+v, want private-folders with bearer", last)
	}
	for _, r := range requests[:len(requests)-1] {
		if r.auth != "" {
			t.Errorf("public request %s carried Authorization", r.path)
		}
	}
	view := b.View()
	if view.HasSelection || len(view.DisplayedFiles) != 0 || !view.FolderLoadState.IsLoaded() {
		t.Errorf("after toggle: %+v", view)
	}
}

func TestBrowser_FolderHTTP500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewBrowser(newAPIClient(t, srv.URL, ""), Options{Mode: models.Public})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()

	view := b.View()
	if !view.FolderLoadState.IsFailed() || view.FolderLoadState.Message != "Error: 500" {
		t.Errorf("folder state = %v, want failed: Error: 500", view.FolderLoadState)
	}
	if view.Folders == nil || len(view.Folders) != 0 {
		t.Errorf("folders = %v, want empty", view.Folders)
	}
}

func newAPIClient(t *testing.T, baseURL, token string) *api.Client {
	t.Helper()
	cfg := config.Default()
	cfg.APIBaseURL = baseURL
	cfg.AccessToken = token
	cfg.MaxRetries = 0
	logger := logging.NewDefaultCLILogger()
	logger.SetOutput(io.Discard)
	client, err := api.NewClient(cfg, logger)
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}
	return client
}

func TestBrowser_ReclickIssuesNoRequest(t *testing.T) {
	fetcher := newStub()
	b := NewBrowser(fetcher, Options{})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.SelectFolder("f1"))
	b.Wait()

	folders, files := fetcher.calls()
	mustDo(t, b.SelectFolder("f1"))
	b.Wait()

	foldersAfter, filesAfter := fetcher.calls()
	if foldersAfter != folders || filesAfter != files {
		t.Errorf("collapse issued requests: folders %d→%d, files %d→%d", folders, foldersAfter, files, filesAfter)
	}
	if view := b.View(); view.HasSelection || !view.FileLoadState.IsIdle() {
		t.Errorf("after collapse: selection %v, files %v", view.HasSelection, view.FileLoadState)
	}
}

func TestBrowser_ProjectionIssuesNoRequest(t *testing.T) {
	fetcher := newStub()
	b := NewBrowser(fetcher, Options{})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.SelectFolder("f1"))
	b.Wait()

	before, beforeFiles := fetcher.calls()
	mustDo(t, b.Dispatch(SetFilterIntent{Type: "document"}))
	mustDo(t, b.Dispatch(SetSortKeyIntent{Key: SortByName}))
	mustDo(t, b.Dispatch(SetSortDirectionIntent{Direction: Descending}))
	after, afterFiles := fetcher.calls()
	if before != after || beforeFiles != afterFiles {
		t.Error("projection change issued a request")
	}
	if err := b.Dispatch(SetSortKeyIntent{Key: "size"}); !errors.Is(err, ErrInvalidSortKey) {
		t.Errorf("invalid key error = %v", err)
	}
}

func TestBrowser_RapidTogglesOnlyLastApplies(t *testing.T) {
	fetcher := newGatedFetcher()
	bus := events.NewEventBus(100)
	defer bus.Close()
	stale := bus.Subscribe(events.EventStaleResponseDiscarded)

	b := NewBrowser(fetcher, Options{Mode: models.Public, EventBus: bus})
	defer b.Close()

	mustDo(t, b.Start())
	c0 := fetcher.next(t)
	mustDo(t, b.ToggleMode())
	c1 := fetcher.next(t)
	mustDo(t, b.ToggleMode())
	c2 := fetcher.next(t)

	if c2.mode != models.Public {
		t.Fatalf("last fetch mode = %v, want public", c2.mode)
	}

	final := []models.Folder{{ID: "winner"}}
	c2.reply <- reply{folders: final}
	c1.reply <- reply{folders: []models.Folder{{ID: "private-loser"}}}
	c0.reply <- reply{err: errors.New("Error: 503")}
	b.Wait()

	view := b.View()
	if !view.FolderLoadState.IsLoaded() || !reflect.DeepEqual(view.Folders, final) {
		t.Errorf("folders = %v %+v, want only the last response", view.FolderLoadState, view.Folders)
	}

	count := 0
	for len(stale) > 0 {
		<-stale
		count++
	}
	if count != 2 {
		t.Errorf("stale events = %d, want 2", count)
	}
}

func TestBrowser_SelectionChangeDiscardsEarlierFiles(t *testing.T) {
	fetcher := newGatedFetcher()
	b := NewBrowser(fetcher, Options{})
	defer b.Close()

	mustDo(t, b.Start())
	fetcher.next(t).reply <- reply{folders: []models.Folder{{ID: "f1"}, {ID: "f2"}}}
	b.Wait()

	mustDo(t, b.SelectFolder("f1"))
	first := fetcher.next(t)
	mustDo(t, b.SelectFolder("f2"))
	second := fetcher.next(t)

	second.reply <- reply{files: []models.FileEntry{{Name: "from-f2"}}}
	first.reply <- reply{files: []models.FileEntry{{Name: "from-f1"}}}
	b.Wait()

	view := b.View()
	if view.SelectedID != "f2" || len(view.DisplayedFiles) != 1 || view.DisplayedFiles[0].Name != "from-f2" {
		t.Errorf("selection %q, files %+v", view.SelectedID, view.DisplayedFiles)
	}
}

func TestBrowser_ToggleResetsFilesBeforeNextFetch(t *testing.T) {
	fetcher := newGatedFetcher()
	b := NewBrowser(fetcher, Options{})
	defer b.Close()

	mustDo(t, b.Start())
	fetcher.next(t).reply <- reply{folders: []models.Folder{{ID: "f1"}}}
	b.Wait()
	mustDo(t, b.SelectFolder("f1"))
	pendingFiles := fetcher.next(t)

	mustDo(t, b.ToggleMode())
	view := b.View()
	if view.HasSelection || !view.FileLoadState.IsIdle() {
		t.Fatalf("after toggle: selection %v, files %v", view.HasSelection, view.FileLoadState)
	}

	pendingFiles.reply <- reply{files: []models.FileEntry{{Name: "late"}}}
	fetcher.next(t).reply <- reply{folders: []models.Folder{}}
	b.Wait()

	if view := b.View(); !view.FileLoadState.IsIdle() || len(view.DisplayedFiles) != 0 {
		t.Errorf("late file result applied: %v", view.FileLoadState)
	}
}

func TestBrowser_FileFailureKeepsFolders(t *testing.T) {
	fetcher := newStub()
	fetcher.fileErr = errors.New("Error: 404")
	b := NewBrowser(fetcher, Options{})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.SelectFolder("f1"))
	b.Wait()

	view := b.View()
	if !view.FileLoadState.IsFailed() || view.FileLoadState.Message != "Error: 404" {
		t.Errorf("file state = %v", view.FileLoadState)
	}
	if !view.FolderLoadState.IsLoaded() || len(view.Folders) != 1 {
		t.Errorf("folder state = %v", view.FolderLoadState)
	}
}

func TestBrowser_RefreshClearsSelection(t *testing.T) {
	fetcher := newStub()
	b := NewBrowser(fetcher, Options{Mode: models.Private})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.SelectFolder("p1"))
	b.Wait()
	mustDo(t, b.Dispatch(RefreshIntent{}))

	view := b.View()
	if view.HasSelection || !view.FolderLoadState.IsLoading() || view.Mode != models.Private {
		t.Errorf("after refresh: %+v", view)
	}
	b.Wait()
	if folders, _ := fetcher.calls(); folders != 2 {
		t.Errorf("folder fetches = %d, want 2", folders)
	}
}

func TestBrowser_UnknownFolder(t *testing.T) {
	b := NewBrowser(newStub(), Options{})
	defer b.Close()

	if err := b.SelectFolder("f1"); !errors.Is(err, ErrUnknownFolder) {
		t.Errorf("select before load: %v", err)
	}
	mustDo(t, b.Start())
	b.Wait()
	if err := b.SelectFolder("nope"); !errors.Is(err, ErrUnknownFolder) {
		t.Errorf("select missing: %v", err)
	}
}

func TestBrowser_OnChange(t *testing.T) {
	b := NewBrowser(newStub(), Options{})
	defer b.Close()

	var mu sync.Mutex
	var revisions []uint64
	unsubscribe := b.OnChange(func(v ViewModel) {
		mu.Lock()
		revisions = append(revisions, v.Revision)
		mu.Unlock()
	})

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.SetFilter(FilterAll)) // no change, no notification

	mu.Lock()
	got := len(revisions)
	mu.Unlock()
	if got != 2 {
		t.Errorf("notifications = %d, want 2 (loading, loaded)", got)
	}

	unsubscribe()
	mustDo(t, b.SetFilter("image"))
	mu.Lock()
	defer mu.Unlock()
	if len(revisions) != got {
		t.Error("listener called after unsubscribe")
	}
}

func TestBrowser_EventsPublished(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	all := bus.SubscribeAll()

	b := NewBrowser(newStub(), Options{EventBus: bus})
	defer b.Close()

	mustDo(t, b.Start())
	b.Wait()
	mustDo(t, b.SelectFolder("f1"))
	b.Wait()
	mustDo(t, b.SetSortKey(SortByName))
	mustDo(t, b.ToggleMode())
	b.Wait()

	var got []events.EventType
	for len(all) > 0 {
		got = append(got, (<-all).Type())
	}
	want := []events.EventType{
		events.EventFoldersLoading,
		events.EventFoldersLoaded,
		events.EventSelectionChanged,
		events.EventFilesLoading,
		events.EventFilesLoaded,
		events.EventProjectionChanged,
		events.EventModeChanged,
		events.EventSelectionChanged,
		events.EventFoldersLoading,
		events.EventFoldersLoaded,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events =\n %v\nwant\n %v", got, want)
	}
}

func TestBrowser_Close(t *testing.T) {
	fetcher := newGatedFetcher()
	b := NewBrowser(fetcher, Options{})

	mustDo(t, b.Start())
	fetcher.next(t) // never answered; Close must cancel it

	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight fetch")
	}

	if err := b.ToggleMode(); !errors.Is(err, ErrClosed) {
		t.Errorf("ToggleMode after Close = %v, want ErrClosed", err)
	}
	if err := b.Dispatch(nil); err == nil {
		t.Error("Dispatch(nil) should fail")
	}
	if !b.View().FolderLoadState.IsLoading() {
		t.Error("cancelled result should not be applied after Close")
	}
	b.Close()
}

func TestBrowser_RequestTimeout(t *testing.T) {
	fetcher := newGatedFetcher()
	b := NewBrowser(fetcher, Options{RequestTimeout: 20 * time.Millisecond})
	defer b.Close()

	mustDo(t, b.Start())
	fetcher.next(t)
	b.Wait()

	if view := b.View(); !view.FolderLoadState.IsFailed() {
		t.Errorf("folder state = %v, want failed after timeout", view.FolderLoadState)
	}
}
