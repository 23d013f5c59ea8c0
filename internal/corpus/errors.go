package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceMissing means the source root does not exist or is not a directory.
	ErrSourceMissing = errors.New("source directory not found")

	// ErrSourceEmpty means the source root holds no .json files at all.
	ErrSourceEmpty = errors.New("no JSON files found in source directory")

	// ErrUnsupportedShape marks a document whose top level is neither an array nor an object.
	ErrUnsupportedShape = errors.New("top-level value is neither an array nor an object")
)

// FileError is a recovered failure to load one source file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
