// Package dbtest provides an in-memory stand-in for db.TxRunner. Memory
// repositories register with a Runner; a failed unit of work restores every
// registered store to the state it had when the outermost InTx began.
package dbtest

import (
	"context"
	"sync"
)

// Snapshotter is implemented by memory repositories. Snapshot captures the
// current state and returns a func that restores it.
type Snapshotter interface {
	Snapshot() (restore func())
}

type txKey struct{}

// InTx reports whether ctx was produced by Runner.InTx.
func InTx(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

type Runner struct {
	mu        sync.Mutex
	stores    []Snapshotter
	commits   int
	rollbacks int
}

func NewRunner(stores ...Snapshotter) *Runner {
	return &Runner{stores: stores}
}

// Track registers additional stores.
func (r *Runner) Track(stores ...Snapshotter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores = append(r.stores, stores...)
}

func (r *Runner) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	r.mu.Lock()
	restores := make([]func(), 0, len(r.stores))
	for _, s := range r.stores {
		restores = append(restores, s.Snapshot())
	}
	r.mu.Unlock()

	rollback := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for _, restore := range restores {
			restore()
		}
		r.rollbacks++
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
		if err != nil {
			rollback()
			return
		}
		r.mu.Lock()
		r.commits++
		r.mu.Unlock()
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (r *Runner) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func (r *Runner) Rollbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rollbacks
}
