// Package state holds the dashboard's mirror of backend collections. Each
// Slice is updated only by the outcome of its own fetch and mutation calls.
//
// Fetch responses are ordered by request sequence number: a response is
// applied only if no newer fetch has been issued since, and a successful
// mutation supersedes every fetch issued before it. The state a page sees
// is therefore always the last issued request's answer, never merely the
// last one to arrive.
package state

import (
	"context"
	"errors"
	"sync"
)

// Status is the lifecycle of a slice's most recent operation.
type Status string

const (
	Idle      Status = "idle"
	Loading   Status = "loading"
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
)

// ErrStale reports that a fetch response was discarded because a newer
// request had been issued.
var ErrStale = errors.New("state: response superseded by a newer request")

// Keyed is implemented by every record: Key returns its identifier.
type Keyed interface {
	Key() string
}

// Backend is the remote side of a slice.
type Backend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id string, v T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is a consistent copy of a slice.
type Snapshot[T any] struct {
	Name   string
	Status Status
	Items  []T
	Err    error
	// Stale is set when the data predates a mutation that has not been
	// refetched yet.
	Stale bool
}

// Slice mirrors one backend collection.
type Slice[T Keyed] struct {
	name    string
	backend Backend[T]

	mu     sync.Mutex
	status Status
	items  []T
	err    error
	stale  bool
	issued uint64 // last fetch sequence handed out
	floor  uint64 // fetches at or below this sequence are discarded
}

// NewSlice returns an idle slice backed by b.
func NewSlice[T Keyed](name string, b Backend[T]) *Slice[T] {
	return &Slice[T]{name: name, backend: b, status: Idle}
}

// Name returns the resource name the slice was registered under.
func (s *Slice[T]) Name() string { return s.name }

// Status returns the current status.
func (s *Slice[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns a copy of the current state.
func (s *Slice[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Slice[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(s.items))
	copy(items, s.items)
	return Snapshot[T]{Name: s.name, Status: s.status, Items: items, Err: s.err, Stale: s.stale}
}

// Find returns the record with the given key from the current collection.
func (s *Slice[T]) Find(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// FetchAll requests the full collection. On success the collection becomes
// exactly the server payload; on failure the previous collection is kept
// and the error recorded. A response that lost the race to a newer request
// is dropped and FetchAll returns the current snapshot with ErrStale.
func (s *Slice[T]) FetchAll(ctx context.Context) (Snapshot[T], error) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.status = Loading
	s.mu.Unlock()

	items, err := s.backend.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued || seq <= s.floor {
		return s.snapshotLocked(), ErrStale
	}
	if err != nil {
		s.status = Failed
		s.err = err
		return s.snapshotLocked(), err
	}
	s.items = items
	s.status = Succeeded
	s.err = nil
	s.stale = false
	return s.snapshotLocked(), nil
}

// supersede drops every fetch issued so far. Callers hold s.mu.
func (s *Slice[T]) supersedeLocked() {
	s.floor = s.issued
	s.stale = true
}

func (s *Slice[T]) beginMutation() {
	s.mu.Lock()
	s.status = Loading
	s.mu.Unlock()
}

func (s *Slice[T]) failLocked(err error) error {
	s.status = Failed
	s.err = err
	return err
}

// Create submits v and merges the stored record into the collection.
func (s *Slice[T]) Create(ctx context.Context, v T) (T, error) {
	s.beginMutation()
	out, err := s.backend.Create(ctx, v)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return out, s.failLocked(err)
	}
	if out.Key() == "" {
		out = v
	}
	s.mergeLocked(out)
	s.status = Succeeded
	s.err = nil
	s.supersedeLocked()
	return out, nil
}

// Update replaces the record with the given id and merges the result.
func (s *Slice[T]) Update(ctx context.Context, id string, v T) (T, error) {
	s.beginMutation()
	out, err := s.backend.Update(ctx, id, v)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return out, s.failLocked(err)
	}
	if out.Key() != id {
		// Backends that answer with a message only: keep what was sent.
		out = v
	}
	s.replaceLocked(id, out)
	s.status = Succeeded
	s.err = nil
	s.supersedeLocked()
	return out, nil
}

// Delete removes the record with the given id. No other record changes.
func (s *Slice[T]) Delete(ctx context.Context, id string) error {
	s.beginMutation()
	err := s.backend.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.failLocked(err)
	}
	kept := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if it.Key() != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.status = Succeeded
	s.err = nil
	s.supersedeLocked()
	return nil
}

func (s *Slice[T]) mergeLocked(v T) {
	if v.Key() != "" {
		for i, it := range s.items {
			if it.Key() == v.Key() {
				s.items[i] = v
				return
			}
		}
	}
	s.items = append(s.items, v)
}

func (s *Slice[T]) replaceLocked(id string, v T) {
	for i, it := range s.items {
		if it.Key() == id {
			s.items[i] = v
			return
		}
	}
	s.items = append(s.items, v)
}

// InvalidateAndRefetch drops in-flight fetches and reloads the collection.
func (s *Slice[T]) InvalidateAndRefetch(ctx context.Context) error {
	s.mu.Lock()
	s.supersedeLocked()
	s.mu.Unlock()
	_, err := s.FetchAll(ctx)
	return err
}
