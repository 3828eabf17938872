package models

// FileType is the type tag of a file entry. The set below is offered as
// quick-filter shortcuts; servers may return any other string.
type FileType = string

const (
	FileTypeDocument FileType = "document"
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
)

// KnownFileTypes lists the enumerated file types in display order.
var KnownFileTypes = []FileType{
	FileTypeDocument,
	FileTypeImage,
	FileTypeVideo,
	FileTypeAudio,
}

// IsKnownFileType reports whether t is one of the enumerated types.
func IsKnownFileType(t string) bool {
	for _, known := range KnownFileTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FileEntry is a file inside a folder. Entries carry no unique identifier;
// their position in a fetch result is the only stable reference.
type FileEntry struct {
	Name    string    `json:"name"`
	Type    FileType  `json:"type"`
	Created Timestamp `json:"created"`
	Updated Timestamp `json:"updated"`
}
