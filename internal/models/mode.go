package models

import (
	"fmt"
	"strings"
)

// AccessMode selects which view of the store is browsed. It drives the
// endpoint prefix and whether a bearer credential is attached.
type AccessMode int

const (
	// Public is the default, unauthenticated view.
	Public AccessMode = iota
	// Private requires a bearer token on every request.
	Private
)

// Endpoint prefixes for each access mode.
const (
	PublicFoldersPrefix  = "public-folders"
	PrivateFoldersPrefix = "private-folders"
	PublicFilesPath      = "public-files"
	PrivateFilesPath     = "private-files"
)

// String returns the lowercase mode name used in config and logs.
func (m AccessMode) String() string {
	if m == Private {
		return "private"
	}
	return "public"
}

// Toggle returns the other mode.
func (m AccessMode) Toggle() AccessMode {
	if m == Private {
		return Public
	}
	return Private
}

// FoldersPrefix returns the endpoint prefix for folder requests in this mode.
func (m AccessMode) FoldersPrefix() string {
	if m == Private {
		return PrivateFoldersPrefix
	}
	return PublicFoldersPrefix
}

// FilesPath returns the cross-folder file listing endpoint for this mode.
func (m AccessMode) FilesPath() string {
	if m == Private {
		return PrivateFilesPath
	}
	return PublicFilesPath
}

// RequiresCredential reports whether requests in this mode carry a bearer token.
func (m AccessMode) RequiresCredential() bool {
	return m == Private
}

// ParseAccessMode parses "public" or "private" (case-insensitive).
// An empty string yields Public.
func ParseAccessMode(s string) (AccessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return Public, nil
	case "private":
		return Private, nil
	default:
		return Public, fmt.Errorf("unknown access mode %q (want public or private)", s)
	}
}
