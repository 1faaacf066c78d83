package arena

import (
	"errors"
	"fmt"

	"github.com/hupe1980/canon/internal/slab"
)

var (
	// ErrPoisoned is returned by every operation on an arena whose critical
	// section was left by a panic or runtime.Goexit.
	ErrPoisoned = errors.New("arena: poisoned")

	// ErrNilValue is returned when Insert is called with a nil pointer.
	ErrNilValue = errors.New("arena: nil value")

	// ErrOutOfRange is returned by Get for a position past the end.
	ErrOutOfRange = errors.New("arena: position out of range")

	// ErrTooLarge is reported to off-heap fallback hooks for values that are
	// kept on the heap because of their size.
	ErrTooLarge = slab.ErrTooLarge
)

// PoisonedError indicates that the named arena can no longer be used.
//
// errors.Is(err, ErrPoisoned) reports true for it.
type PoisonedError struct {
	Name string
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("arena %s: poisoned by an abnormal exit inside a critical section", e.Name)
}

func (e *PoisonedError) Unwrap() error { return ErrPoisoned }
