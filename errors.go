package canon

import "github.com/hupe1980/canon/arena"

var (
	// ErrPoisoned is returned (or panicked with, wrapped in *PoisonedError)
	// once a store has become unusable.
	ErrPoisoned = arena.ErrPoisoned

	// ErrNilValue is returned by TryInternPtr for a nil pointer.
	ErrNilValue = arena.ErrNilValue
)

// PoisonedError reports the store that became unusable.
//
// errors.Is(err, ErrPoisoned) holds for every *PoisonedError.
type PoisonedError = arena.PoisonedError
