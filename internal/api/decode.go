package api

import (
	"bytes"
	"encoding/json"

	"github.com/rescale/rescale-browse/internal/models"
)

var (
	folderFields = []string{"id", "name", "created", "updated"}
	fileFields   = []string{"name", "type", "created", "updated"}
)

// decodeFolders validates body as a JSON array of folder objects.
func decodeFolders(body []byte) ([]models.Folder, error) {
	items, err := decodeArray(body, folderFields)
	if err != nil {
		return nil, err
	}
	folders := make([]models.Folder, len(items))
	for i, item := range items {
		folders[i] = models.Folder{
			ID:      item["id"],
			Name:    item["name"],
			Created: models.ParseTimestamp(item["created"]),
			Updated: models.ParseTimestamp(item["updated"]),
		}
	}
	return folders, nil
}

// decodeFiles validates body as a JSON array of file entry objects.
func decodeFiles(body []byte) ([]models.FileEntry, error) {
	items, err := decodeArray(body, fileFields)
	if err != nil {
		return nil, err
	}
	files := make([]models.FileEntry, len(items))
	for i, item := range items {
		files[i] = models.FileEntry{
			Name:    item["name"],
			Type:    item["type"],
			Created: models.ParseTimestamp(item["created"]),
			Updated: models.ParseTimestamp(item["updated"]),
		}
	}
	return files, nil
}

// decodeArray checks that body is an array of objects and that every object
// carries each required field as a string. Extra fields are ignored.
func decodeArray(body []byte, required []string) ([]map[string]string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, parseError("expected a JSON array")
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, parseError("%v", err)
	}

	out := make([]map[string]string, len(raw))
	for i, elem := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			return nil, parseError("element %d is not an object", i)
		}
		fields := make(map[string]string, len(required))
		for _, name := range required {
			value, ok := obj[name]
			if !ok {
				return nil, parseError("element %d is missing %q", i, name)
			}
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, parseError("element %d field %q is not a string", i, name)
			}
			fields[name] = s
		}
		out[i] = fields
	}
	return out, nil
}
