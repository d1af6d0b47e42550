// Package world keeps entities standing on the terrain.
package world

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// ErrNoGround is returned when a world has no terrain to stand on.
var ErrNoGround = errors.New("world has no ground")

// ClampAll puts every walker on ground, using at most limit goroutines
// (limit <= 0 means GOMAXPROCS). It returns the first clamp error; walkers
// already clamped keep their new height.
func ClampAll(ctx context.Context, ground Ground, walkers []*Walker, limit int) error {
	return forEach(ctx, walkers, limit, func(w *Walker) error {
		return w.Clamp(ground)
	})
}

func forEach(ctx context.Context, walkers []*Walker, limit int, fn func(*Walker) error) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, w := range walkers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(w)
		})
	}

	return g.Wait()
}

// World owns the walkers on one terrain.
type World struct {
	mu      sync.RWMutex
	ground  Ground
	walkers map[uint32]*Walker
	nextID  uint32
	workers int
	log     *zap.Logger
}

// New creates a world over ground. workers bounds the goroutines used per
// update (<= 0 means GOMAXPROCS).
func New(ground Ground, workers int) *World {
	return &World{
		ground:  ground,
		walkers: make(map[uint32]*Walker),
		nextID:  1,
		workers: workers,
		log:     logger.Named("world"),
	}
}

// Ground returns the current terrain.
func (w *World) Ground() Ground {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ground
}

// SetGround swaps the terrain, for example after a heightmap reload, and
// re-clamps every walker onto it.
func (w *World) SetGround(ctx context.Context, ground Ground) error {
	if ground == nil {
		return ErrNoGround
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.ground = ground
	if err := ClampAll(ctx, ground, w.sortedLocked(), w.workers); err != nil {
		return fmt.Errorf("re-clamping walkers: %w", err)
	}
	return nil
}

// Spawn adds a walker standing on the ground at (x, z). Spawning outside the
// terrain fails with terrain.ErrNotFound.
func (w *World) Spawn(x, z float32) (*Walker, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ground == nil {
		return nil, ErrNoGround
	}
	y, err := w.ground.ElevationAt(x, z)
	if err != nil {
		return nil, fmt.Errorf("spawning at (%g, %g): %w", x, z, err)
	}

	walker := NewWalker(w.nextID, x, z)
	walker.Position.Y = y

	w.walkers[walker.ID] = walker
	w.nextID++

	w.log.Debug("walker spawned",
		zap.Uint32("id", walker.ID),
		zap.Float32("x", x),
		zap.Float32("y", walker.Position.Y),
		zap.Float32("z", z),
	)

	return walker, nil
}

// Get returns a walker by ID.
func (w *World) Get(id uint32) (*Walker, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	walker, ok := w.walkers[id]
	return walker, ok
}

// Remove deletes a walker.
func (w *World) Remove(id uint32) {
	w.mu.Lock()
	delete(w.walkers, id)
	w.mu.Unlock()
}

// Walkers returns all walkers ordered by ID.
func (w *World) Walkers() []*Walker {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sortedLocked()
}

// Len returns the number of walkers.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.walkers)
}

func (w *World) sortedLocked() []*Walker {
	out := make([]*Walker, 0, len(w.walkers))
	for _, walker := range w.walkers {
		out = append(out, walker)
	}
	slices.SortFunc(out, func(a, b *Walker) int {
		return int(a.ID) - int(b.ID)
	})
	return out
}

// Update advances every walker by dt seconds in parallel and removes the ones
// that have fallen out of the world. It returns how many were removed.
func (w *World) Update(ctx context.Context, dt float32) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ground == nil {
		return 0, ErrNoGround
	}

	ground := w.ground
	err := forEach(ctx, w.sortedLocked(), w.workers, func(walker *Walker) error {
		err := walker.Update(dt, ground)
		if errors.Is(err, terrain.ErrDegeneratePlane) {
			w.log.Warn("walker kept its height", zap.Error(err))
			return nil
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for id, walker := range w.walkers {
		if walker.Gone() {
			delete(w.walkers, id)
			removed++
		}
	}
	if removed > 0 {
		w.log.Debug("walkers fell out of the world", zap.Int("count", removed))
	}

	return removed, nil
}
