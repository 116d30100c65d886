// Package attachment validates files uploaded alongside tickets.
package attachment

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMaxBytes is the upload ceiling applied when none is configured (16 MiB).
const DefaultMaxBytes int64 = 16 * 1024 * 1024

// DefaultExtensions lists the accepted file extensions, without the dot.
var DefaultExtensions = []string{"txt", "jpg", "jpeg", "zip"}

// Reason identifies why an attachment was rejected.
type Reason string

const (
	ReasonMissingFileName Reason = "missing_file_name"
	ReasonBadExtension    Reason = "bad_extension"
	ReasonSizeExceeded    Reason = "size_exceeded"
)

// Error is returned by Validate.
type Error struct {
	Reason   Reason
	FileName string
	Size     int64
	MaxBytes int64
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonMissingFileName:
		return "attachment file name is missing"
	case ReasonBadExtension:
		return fmt.Sprintf("attachment %q has a disallowed extension", e.FileName)
	case ReasonSizeExceeded:
		return fmt.Sprintf("attachment %q is %d bytes, limit is %d", e.FileName, e.Size, e.MaxBytes)
	default:
		return "invalid attachment"
	}
}

// Validator checks a filename and byte length. The zero value uses the defaults.
type Validator struct {
	MaxBytes   int64
	Extensions []string
}

// NewValidator builds a validator with the given ceiling and the default whitelist.
func NewValidator(maxBytes int64) Validator {
	return Validator{MaxBytes: maxBytes, Extensions: DefaultExtensions}
}

// Validate returns nil when the attachment is acceptable, otherwise an *Error.
func (v Validator) Validate(fileName string, size int64) error {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return &Error{Reason: ReasonMissingFileName, Size: size, MaxBytes: v.maxBytes()}
	}
	if !v.allowed(name) {
		return &Error{Reason: ReasonBadExtension, FileName: name, Size: size, MaxBytes: v.maxBytes()}
	}
	if size > v.maxBytes() {
		return &Error{Reason: ReasonSizeExceeded, FileName: name, Size: size, MaxBytes: v.maxBytes()}
	}
	return nil
}

func (v Validator) maxBytes() int64 {
	if v.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return v.MaxBytes
}

func (v Validator) allowed(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	exts := v.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, candidate := range exts {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}
