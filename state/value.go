package state

import (
	"context"
	"sync"
)

// Value mirrors a single backend record, such as the signed-in profile.
// It follows the same status and ordering rules as Slice.
type Value[T any] struct {
	name  string
	fetch func(ctx context.Context) (T, error)

	mu     sync.Mutex
	status Status
	value  T
	err    error
	issued uint64
}

// NewValue returns an idle value loaded by fetch.
func NewValue[T any](name string, fetch func(ctx context.Context) (T, error)) *Value[T] {
	return &Value[T]{name: name, fetch: fetch, status: Idle}
}

func (v *Value[T]) Name() string { return v.name }

// Get returns the current value, status and last error.
func (v *Value[T]) Get() (T, Status, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.status, v.err
}

// Status returns the current status.
func (v *Value[T]) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Fetch loads the record. A failure keeps the previous value.
func (v *Value[T]) Fetch(ctx context.Context) (T, error) {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	v.status = Loading
	v.mu.Unlock()

	val, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.issued {
		return v.value, ErrStale
	}
	if err != nil {
		v.status = Failed
		v.err = err
		return v.value, err
	}
	v.value = val
	v.status = Succeeded
	v.err = nil
	return val, nil
}

// InvalidateAndRefetch reloads the record.
func (v *Value[T]) InvalidateAndRefetch(ctx context.Context) error {
	_, err := v.Fetch(ctx)
	return err
}
