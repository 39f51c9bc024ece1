package dataset

// Nullable holds a value that may be absent. The zero value is absent.
type Nullable[T any] struct {
	value T
	valid bool
}

// Some wraps a present value.
func Some[T any](v T) Nullable[T] { return Nullable[T]{value: v, valid: true} }

// None returns an absent value.
func None[T any]() Nullable[T] { return Nullable[T]{} }

// Valid reports whether a value is present.
func (n Nullable[T]) Valid() bool { return n.valid }

// Get returns the value and whether it is present.
func (n Nullable[T]) Get() (T, bool) { return n.value, n.valid }

// Or returns the value, or def when absent.
func (n Nullable[T]) Or(def T) T {
	if !n.valid {
		return def
	}
	return n.value
}
