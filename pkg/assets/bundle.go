package assets

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Bundle is the pair of models a session needs. It is never mutated after
// the future resolves; only node transforms inside the models change.
type Bundle struct {
	Vehicle *Model
	Track   *Model
}

// Future resolves to a Bundle once both models have loaded.
type Future struct {
	done   chan struct{}
	bundle *Bundle
	err    error
}

// LoadBundle starts loading the vehicle and track concurrently.
// The first failure cancels the other load.
func LoadBundle(ctx context.Context, loader Loader, vehiclePath, trackPath string) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		var vehicle, track *Model
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			m, err := loader.Load(gctx, vehiclePath)
			if err != nil {
				return fmt.Errorf("load vehicle %q: %w", vehiclePath, err)
			}
			vehicle = m
			return nil
		})
		g.Go(func() error {
			m, err := loader.Load(gctx, trackPath)
			if err != nil {
				return fmt.Errorf("load track %q: %w", trackPath, err)
			}
			track = m
			return nil
		})

		if err := g.Wait(); err != nil {
			f.err = err
			return
		}
		f.bundle = &Bundle{Vehicle: vehicle, Track: track}
	}()

	return f
}

// Done is closed once the future has resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future has resolved, successfully or not.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the bundle is loaded or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Bundle, error) {
	select {
	case <-f.done:
		return f.bundle, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
