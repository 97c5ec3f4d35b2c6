// Package upload checks files submitted for classification.
package upload

import (
	"fmt"
	"strings"
)

// MaxSize is the largest accepted upload, 5 MiB.
const MaxSize = 5 * 1024 * 1024

// AllowedExtensions are matched case-insensitively.
var AllowedExtensions = []string{".py", ".html", ".php"}

// File describes one submitted file.
type File struct {
	Name string
	Size int64
}

// Error is a validation failure. Message is shown to the user.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Banner is the message as rendered in the page's warning banner.
func (e *Error) Banner() string { return "⚠ " + e.Message }

func invalid(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Validate returns the first rule files break, or nil when exactly one
// acceptable file was submitted.
func Validate(files []File) error {
	if len(files) == 0 {
		return invalid("Please Upload a File")
	}
	if len(files) > 1 {
		return invalid("Too Many Files Uploaded")
	}
	f := files[0]
	ext := Extension(f.Name)
	if !allowed(ext) {
		return invalid("Invalid File is Type: .%s", ext)
	}
	if f.Size <= 0 {
		return invalid("Selected File is Empty")
	}
	if f.Size > MaxSize {
		return invalid("File Size Too Large: %.2f megabytes", float64(f.Size)/1024/1024)
	}
	return nil
}

// Extension returns what follows the last dot of name, or the whole name
// when it has none.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func allowed(ext string) bool {
	ext = "." + strings.ToLower(ext)
	for _, a := range AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}
