package derive

import (
	"errors"
	"fmt"
	"go/token"
)

var (
	// ErrUnsupportedShape is wrapped by every *UnsupportedShapeError.
	ErrUnsupportedShape = errors.New("unsupported shape")

	// ErrNoGoFiles is returned when a directory has no buildable Go files.
	ErrNoGoFiles = errors.New("no buildable Go files")

	// ErrNothingToGenerate is returned when no type carries the directive.
	ErrNothingToGenerate = errors.New("no //canon:derive types")
)

// UnsupportedShapeError reports a type that cannot be derived.
type UnsupportedShapeError struct {
	Type   string
	Pos    token.Position
	Reason string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Type, e.Reason)
}

func (e *UnsupportedShapeError) Unwrap() error { return ErrUnsupportedShape }
