package domain

// Changeable represents an optionally-updated field in a partial update:
// either "leave as is" or "change to this value". Unlike a pointer it keeps
// "explicitly set to the zero value" distinguishable from "not supplied".
type Changeable[T any] struct {
	Value   T    `bson:"value" json:"value"`
	Changed bool `bson:"changed" json:"changed"`
}

// ChangeTo returns a Changeable carrying a new value.
func ChangeTo[T any](v T) Changeable[T] {
	return Changeable[T]{Value: v, Changed: true}
}

// LeaveAsIs returns a Changeable that keeps the current value untouched.
func LeaveAsIs[T any]() Changeable[T] {
	return Changeable[T]{}
}

// Apply folds the Changeable over the current value.
func (c Changeable[T]) Apply(current T) T {
	if c.Changed {
		return c.Value
	}
	return current
}
