package errors

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlankPrefix marks a blank (archive-scoped) node identifier.
const BlankPrefix = "_:"

// ValidateEntryName validates an archive entry name for safety.
// Entry names end up as paths inside ZIP files and directories, so they are
// held to the same rules as repository paths:
//   - Name cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateEntryName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "entry name cannot be empty")
	}

	const maxNameLength = 500
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPath, "entry name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "entry name contains invalid characters")
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidPath, "entry name must be relative (cannot start with /)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "entry name cannot contain path traversal sequences (..)")
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidPath, "entry name cannot contain backslashes")
	}

	return nil
}

// ValidateIdentifier checks that id is usable as a node identifier: either a
// blank identifier ("_:" followed by at least one character) or an absolute
// IRI. Relative identifiers must be resolved against a base before they
// reach a node.
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeMissingIdentifier, "identifier cannot be empty")
	}
	if !utf8.ValidString(id) {
		return New(ErrCodeInvalidInput, "identifier %q is not valid UTF-8", id)
	}
	if strings.HasPrefix(id, BlankPrefix) {
		if len(id) == len(BlankPrefix) {
			return New(ErrCodeInvalidInput, "blank identifier has no label")
		}
		return nil
	}
	if !IsAbsoluteIRI(id) {
		return New(ErrCodeInvalidInput, "identifier %q is neither blank nor absolute", id)
	}
	return nil
}

// IsBlank reports whether id is a blank identifier.
func IsBlank(id string) bool {
	return strings.HasPrefix(id, BlankPrefix)
}

// IsAbsoluteIRI reports whether s is valid UTF-8 and parses as an IRI with
// a scheme.
func IsAbsoluteIRI(s string) bool {
	if !utf8.ValidString(s) || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.IsAbs()
}
