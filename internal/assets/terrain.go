package assets

import (
	"fmt"

	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
)

// TerrainOptions maps terrain settings to build options, resolving the
// heightmap and texture through r. Resolution failures wrap
// terrain.ErrResource.
func (r *Resolver) TerrainOptions(cfg config.TerrainConfig) (terrain.Options, error) {
	heightmap, err := r.Resolve(cfg.Heightmap)
	if err != nil {
		return terrain.Options{}, fmt.Errorf("%w: heightmap: %w", terrain.ErrResource, err)
	}
	tex, err := r.Resolve(cfg.Texture)
	if err != nil {
		return terrain.Options{}, fmt.Errorf("%w: texture: %w", terrain.ErrResource, err)
	}

	return terrain.Options{
		TileCount:     cfg.TileCount,
		Scale:         cfg.Scale,
		MinElevation:  cfg.MinElevation,
		MaxElevation:  cfg.MaxElevation,
		Heightmap:     heightmap,
		Texture:       tex,
		TextureRepeat: cfg.TextureRepeat,
	}, nil
}
