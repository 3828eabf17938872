// Package state holds the browse session: which access mode is active,
// what has been fetched, what is selected and how files are projected for
// display.
//
// Snapshot is immutable. Every change goes through one of its transition
// methods, which return a new Snapshot and, when a fetch is needed, the
// request to issue. Browser serializes transitions and runs the fetches.
package state

import (
	"errors"
	"slices"

	"github.com/rescale/rescale-browse/internal/models"
)

// ErrUnknownFolder is returned when selecting an ID that is not in the
// loaded folder collection.
var ErrUnknownFolder = errors.New("unknown folder")

// Stream identifies one of the two independent fetch streams.
type Stream int

const (
	FolderStream Stream = iota
	FileStream
)

func (s Stream) String() string {
	if s == FileStream {
		return "files"
	}
	return "folders"
}

// FetchRequest describes a fetch a transition wants issued. Token is
// compared against the snapshot's current token when the result comes back;
// a mismatch means the result is stale.
type FetchRequest struct {
	Stream   Stream
	Mode     models.AccessMode
	FolderID string // FileStream only
	Token    uint64
}

// Snapshot is one immutable state of the browse session.
type Snapshot struct {
	Mode         models.AccessMode
	Folders      LoadState[[]models.Folder]
	SelectedID   string
	HasSelection bool
	Files        LoadState[[]models.FileEntry]
	Projection   ProjectionSettings

	// FolderToken and FileToken increase every time a request on that
	// stream is issued or invalidated.
	FolderToken uint64
	FileToken   uint64

	// Revision increases on every applied change.
	Revision uint64
}

// NewSnapshot returns the initial state for mode: nothing fetched, nothing
// selected, default projection.
func NewSnapshot(mode models.AccessMode) Snapshot {
	return Snapshot{
		Mode:       mode,
		Folders:    Idle[[]models.Folder](),
		Files:      Idle[[]models.FileEntry](),
		Projection: DefaultProjection(),
	}
}

// BeginFolderLoad marks folders Loading for the current mode, clears the
// selection and resets files to Idle. Any in-flight folder or file result
// becomes stale.
func (s Snapshot) BeginFolderLoad() (Snapshot, FetchRequest) {
	next := s.clearSelection()
	next.Folders = Loading[[]models.Folder]()
	next.FolderToken++
	next.Revision++
	return next, FetchRequest{
		Stream: FolderStream,
		Mode:   next.Mode,
		Token:  next.FolderToken,
	}
}

// ToggleMode flips the access mode and reloads folders for the new mode.
func (s Snapshot) ToggleMode() (Snapshot, FetchRequest) {
	s.Mode = s.Mode.Toggle()
	return s.BeginFolderLoad()
}

// Refresh reloads folders for the current mode with the same cascade as a
// mode change.
func (s Snapshot) Refresh() (Snapshot, FetchRequest) {
	return s.BeginFolderLoad()
}

// ApplyFolderResult applies a folder fetch outcome. It reports false and
// leaves the snapshot untouched when token is stale.
func (s Snapshot) ApplyFolderResult(token uint64, folders []models.Folder, err error) (Snapshot, bool) {
	if token != s.FolderToken || !s.Folders.IsLoading() {
		return s, false
	}
	if err != nil {
		s.Folders = Failed[[]models.Folder](err.Error())
	} else {
		if folders == nil {
			folders = []models.Folder{}
		}
		s.Folders = Loaded(folders)
	}
	s.Revision++
	return s, true
}

// SelectFolder selects id and requests its files. Selecting the folder that
// is already selected collapses it instead and returns no request.
func (s Snapshot) SelectFolder(id string) (Snapshot, *FetchRequest, error) {
	if s.HasSelection && s.SelectedID == id {
		next := s.clearSelection()
		next.Revision++
		return next, nil, nil
	}

	if !s.Folders.IsLoaded() || models.FindFolder(s.Folders.Value, id) < 0 {
		return s, nil, ErrUnknownFolder
	}

	s.SelectedID = id
	s.HasSelection = true
	s.Files = Loading[[]models.FileEntry]()
	s.FileToken++
	s.Revision++
	return s, &FetchRequest{
		Stream:   FileStream,
		Mode:     s.Mode,
		FolderID: id,
		Token:    s.FileToken,
	}, nil
}

// ApplyFileResult applies a file fetch outcome. It reports false and leaves
// the snapshot untouched when token is stale.
func (s Snapshot) ApplyFileResult(token uint64, files []models.FileEntry, err error) (Snapshot, bool) {
	if token != s.FileToken || !s.Files.IsLoading() {
		return s, false
	}
	if err != nil {
		s.Files = Failed[[]models.FileEntry](err.Error())
	} else {
		if files == nil {
			files = []models.FileEntry{}
		}
		s.Files = Loaded(files)
	}
	s.Revision++
	return s, true
}

// SetFilter changes the type filter. An empty type means "all".
func (s Snapshot) SetFilter(fileType string) Snapshot {
	if fileType == "" {
		fileType = FilterAll
	}
	if s.Projection.FilterType == fileType {
		return s
	}
	s.Projection.FilterType = fileType
	s.Revision++
	return s
}

// SetSortKey changes the sort key. SortNone restores server order.
func (s Snapshot) SetSortKey(key SortKey) (Snapshot, error) {
	if !key.Valid() {
		return s, ErrInvalidSortKey
	}
	if s.Projection.SortKey == key {
		return s, nil
	}
	s.Projection.SortKey = key
	s.Revision++
	return s, nil
}

// SetSortDirection changes the sort direction.
func (s Snapshot) SetSortDirection(dir Direction) (Snapshot, error) {
	if !dir.Valid() {
		return s, ErrInvalidDirection
	}
	if s.Projection.Direction == dir {
		return s, nil
	}
	s.Projection.Direction = dir
	s.Revision++
	return s, nil
}

// clearSelection drops the selection and resets files to Idle, invalidating
// any in-flight file fetch.
func (s Snapshot) clearSelection() Snapshot {
	s.SelectedID = ""
	s.HasSelection = false
	s.Files = Idle[[]models.FileEntry]()
	s.FileToken++
	return s
}

// DisplayedFiles returns the projected files for the current selection.
// It is empty unless files are Loaded.
func (s Snapshot) DisplayedFiles() []models.FileEntry {
	return Project(s.Files.Get(), s.Projection)
}

// SelectedFolder returns the selected folder, if any.
func (s Snapshot) SelectedFolder() (models.Folder, bool) {
	if !s.HasSelection {
		return models.Folder{}, false
	}
	folders := s.Folders.Get()
	if i := models.FindFolder(folders, s.SelectedID); i >= 0 {
		return folders[i], true
	}
	return models.Folder{}, false
}

// ViewModel is what a renderer draws. Slices are copies the renderer may keep.
type ViewModel struct {
	Mode            models.AccessMode
	Folders         []models.Folder
	FolderLoadState LoadState[[]models.Folder]
	SelectedID      string
	HasSelection    bool
	DisplayedFiles  []models.FileEntry
	FileLoadState   LoadState[[]models.FileEntry]
	Projection      ProjectionSettings
	Revision        uint64
}

// View derives the renderer view model from s.
func (s Snapshot) View() ViewModel {
	folders := slices.Clone(s.Folders.Get())
	if folders == nil {
		folders = []models.Folder{}
	}
	folderState := s.Folders
	if folderState.IsLoaded() {
		folderState.Value = folders
	}
	fileState := s.Files
	if fileState.IsLoaded() {
		fileState.Value = slices.Clone(fileState.Value)
	}
	return ViewModel{
		Mode:            s.Mode,
		Folders:         folders,
		FolderLoadState: folderState,
		SelectedID:      s.SelectedID,
		HasSelection:    s.HasSelection,
		DisplayedFiles:  s.DisplayedFiles(),
		FileLoadState:   fileState,
		Projection:      s.Projection,
		Revision:        s.Revision,
	}
}
