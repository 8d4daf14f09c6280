package entity

type changeState uint8

const (
	stateUnchanged changeState = iota
	stateCleared
	stateSet
)

// Change is a tri-state update value for one field: unchanged (the default),
// cleared, or set-to. This is distinct from a plain optional value — "no
// input" and "explicit clear" must never be conflated.
type Change[T any] struct {
	state changeState
	value T
}

// SetTo marks a field as set to the given value.
func SetTo[T any](v T) Change[T] {
	return Change[T]{state: stateSet, value: v}
}

// Clear marks a field as explicitly cleared.
func Clear[T any]() Change[T] {
	return Change[T]{state: stateCleared}
}

// IsSet reports whether the field is set to a new value.
func (c Change[T]) IsSet() bool { return c.state == stateSet }

// IsCleared reports whether the field is explicitly cleared.
func (c Change[T]) IsCleared() bool { return c.state == stateCleared }

// IsUnchanged reports whether the field is untouched.
func (c Change[T]) IsUnchanged() bool { return c.state == stateUnchanged }

// Value returns the set-to value; meaningful only when IsSet.
func (c Change[T]) Value() T { return c.value }
