package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/eringen/pubadmin/auth"
)

// Paths describes where a resource lives on the backend. Empty paths mark
// operations the resource does not support.
type Paths struct {
	List         string
	Create       string
	Update       func(id string) string
	Delete       func(id string) string
	UpdateMethod string // default PUT
}

// RESTPaths is the common layout: list and create on base, update and
// delete on base/{id}.
func RESTPaths(base string) Paths {
	item := func(id string) string { return base + "/" + url.PathEscape(id) }
	return Paths{List: base, Create: base, Update: item, Delete: item}
}

// Resource is a typed collection endpoint.
type Resource[T any] struct {
	c     *Client
	name  string
	paths Paths
	keys  []string
}

// NewResource describes a collection endpoint. keys are the envelope keys
// the backend may use instead of "data".
func NewResource[T any](c *Client, name string, paths Paths, keys ...string) *Resource[T] {
	if paths.UpdateMethod == "" {
		paths.UpdateMethod = http.MethodPut
	}
	return &Resource[T]{c: c, name: name, paths: paths, keys: keys}
}

// Name returns the resource name.
func (r *Resource[T]) Name() string { return r.name }

// For binds the resource to the caller's session.
func (r *Resource[T]) For(s auth.Session) *Bound[T] {
	return &Bound[T]{r: r, token: s.Token}
}

// Bound is a Resource that sends the session token with every call.
type Bound[T any] struct {
	r     *Resource[T]
	token string
}

// List fetches the whole collection in server order.
func (b *Bound[T]) List(ctx context.Context) ([]T, error) {
	if b.r.paths.List == "" {
		return nil, ErrUnsupported
	}
	var items []T
	if err := b.r.c.do(ctx, http.MethodGet, b.r.paths.List, b.token, nil, &items, b.r.keys); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Create submits v and returns the stored record. When the backend answers
// without a record the zero value is returned.
func (b *Bound[T]) Create(ctx context.Context, v T) (T, error) {
	var out T
	if b.r.paths.Create == "" {
		return out, ErrUnsupported
	}
	err := b.r.c.do(ctx, http.MethodPost, b.r.paths.Create, b.token, v, &out, b.r.keys)
	return out, err
}

// Update replaces the record with the given id.
func (b *Bound[T]) Update(ctx context.Context, id string, v T) (T, error) {
	var out T
	if b.r.paths.Update == nil {
		return out, ErrUnsupported
	}
	err := b.r.c.do(ctx, b.r.paths.UpdateMethod, b.r.paths.Update(id), b.token, v, &out, b.r.keys)
	return out, err
}

// Delete removes the record with the given id.
func (b *Bound[T]) Delete(ctx context.Context, id string) error {
	if b.r.paths.Delete == nil {
		return ErrUnsupported
	}
	return b.r.c.do(ctx, http.MethodDelete, b.r.paths.Delete(id), b.token, nil, nil, nil)
}
