package model

// Option holds a value that may be absent. Absent and zero are different
// states: a pool with zero liquidity still exists.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Option[T] {
	return Option[T]{}
}

// OptionOf converts the (value, found) pair returned by store lookups.
func OptionOf[T any](v T, found bool) Option[T] {
	if !found {
		return None[T]()
	}
	return Some(v)
}

func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Option[T]) IsSome() bool {
	return o.ok
}

// OrElse returns the held value or fallback when absent.
func (o Option[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}
