package common

import (
	"path/filepath"
	"strings"
)

// IsValidIdentifier returns whether or not a given string would be a valid
// identifier (project name, program name, etc.)
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}

// ReplaceExt swaps the extension of a path for another one (eg. `a.duck` =>
// `a.dko`).  Paths without an extension simply gain the new one.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
