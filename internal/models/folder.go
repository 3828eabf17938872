package models

// Folder is a top-level container in the store. Folders are immutable once
// fetched and replaced wholesale on every refetch.
type Folder struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created Timestamp `json:"created"`
	Updated Timestamp `json:"updated"`
}

// FindFolder returns the index of the folder with the given ID, or -1.
func FindFolder(folders []Folder, id string) int {
	for i, f := range folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}
