// terrainprobe builds a terrain field from a heightmap and queries it from
// the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	gomath "math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Faultbox/midgard-terrain/internal/assets"
	"github.com/Faultbox/midgard-terrain/internal/config"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/internal/game/world"
	"github.com/Faultbox/midgard-terrain/internal/logger"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	// Terrain construction logs at info; only warnings reach the terminal.
	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var err error
	switch command {
	case "tiles":
		err = cmdTiles(args)
	case "at":
		err = cmdAt(args)
	case "grid":
		err = cmdGrid(args)
	case "path":
		err = cmdPath(args)
	case "watch":
		err = cmdWatch(args)
	case "init-config":
		err = cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(exitCode(err))
	}
}

func printUsage() {
	fmt.Println(`terrainprobe - terrain height query tool

Usage:
  terrainprobe <command> [options]

Commands:
  tiles                      Print the tile layout
  at <x> <z> [<x> <z> ...]   Print the elevation at world points
  grid [-n N]                Print an N x N elevation grid over the terrain
  path <x0> <z0> <x1> <z1>   Print a walkable route between two points
  watch <x> <z>              Reprint the elevation whenever the heightmap changes
  init-config [path]         Write the default config file

Terrain options (all commands except init-config):
  -config <file>   Config file (defaults < file < options)
  -heightmap <p>   Heightmap image
  -texture <p>     Ground texture
  -tiles <n>       Tiles per side
  -scale <s>       Tile scale
  -min <y> -max <y>  Elevation range

Options go before the coordinates. Coordinates may be negative.

Examples:
  terrainprobe tiles -heightmap hills.png -texture grass.png
  terrainprobe at -tiles 5 0 0 -12.5 -3
  terrainprobe grid -n 9 -config terrain.yaml
  terrainprobe path -cell 0.5 -climb 0.2 -4 -4 4 4`)
}

// exitCode maps query failures to distinct exit statuses for scripting.
func exitCode(err error) int {
	switch {
	case errors.Is(err, terrain.ErrResource):
		return 3
	case errors.Is(err, config.ErrInvalid), errors.Is(err, terrain.ErrInvalidOptions):
		return 2
	default:
		return 1
	}
}

// terrainFlags registers the options shared by every terrain command.
type terrainFlags struct {
	config    *string
	heightmap *string
	texture   *string
	tiles     *int
	scale     *float64
	min       *float64
	max       *float64
}

func newTerrainFlags(fs *flag.FlagSet) *terrainFlags {
	return &terrainFlags{
		config:    fs.String("config", "", "Config file"),
		heightmap: fs.String("heightmap", "", "Heightmap image"),
		texture:   fs.String("texture", "", "Ground texture"),
		tiles:     fs.Int("tiles", 0, "Tiles per side"),
		scale:     fs.Float64("scale", 0, "Tile scale"),
		min:       fs.Float64("min", gomath.NaN(), "Minimum elevation"),
		max:       fs.Float64("max", gomath.NaN(), "Maximum elevation"),
	}
}

// load builds the field described by the config file and flag overrides.
func (tf *terrainFlags) load() (*terrain.Field, error) {
	opts, err := tf.options()
	if err != nil {
		return nil, err
	}
	return terrain.Load(opts)
}

func (tf *terrainFlags) options() (terrain.Options, error) {
	cfg, err := config.LoadFrom(*tf.config)
	if err != nil {
		return terrain.Options{}, err
	}

	t := &cfg.Terrain
	if *tf.heightmap != "" {
		t.Heightmap = *tf.heightmap
	}
	if *tf.texture != "" {
		t.Texture = *tf.texture
	}
	if *tf.tiles > 0 {
		t.TileCount = *tf.tiles
	}
	if *tf.scale > 0 {
		t.Scale = float32(*tf.scale)
	}
	if !gomath.IsNaN(*tf.min) {
		t.MinElevation = float32(*tf.min)
	}
	if !gomath.IsNaN(*tf.max) {
		t.MaxElevation = float32(*tf.max)
	}
	if err := cfg.Validate(); err != nil {
		return terrain.Options{}, err
	}

	resolver := assets.NewResolver(".")
	if cfg.Source != "" {
		resolver.AddRoot(filepath.Dir(cfg.Source))
	}
	return resolver.TerrainOptions(cfg.Terrain)
}

func cmdTiles(args []string) error {
	fs := flag.NewFlagSet("tiles", flag.ExitOnError)
	tf := newTerrainFlags(fs)
	fs.Parse(args)

	field, err := tf.load()
	if err != nil {
		return err
	}

	hf := field.HeightField()
	b := field.Bounds()
	fmt.Printf("Tiles:   %d x %d (scale %g)\n", field.TileCount(), field.TileCount(), field.Scale())
	fmt.Printf("Cells:   %d x %d per tile\n", hf.VerticesPerCol(), hf.VerticesPerRow())
	fmt.Printf("Bounds:  x [%g, %g)  z [%g, %g)\n", b.MinX, b.MaxX(), b.MinZ, b.MaxZ())
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "index\trow\tcol\tmin x\tmin z\tmax x\tmax z\tcentre x\tcentre z\t")
	n := field.TileCount()
	for i, tile := range field.Tiles() {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
			i, i/n, i%n,
			tile.Bounds.MinX, tile.Bounds.MinZ, tile.Bounds.MaxX(), tile.Bounds.MaxZ(),
			tile.Position.X, tile.Position.Z)
	}
	return w.Flush()
}

func cmdAt(args []string) error {
	fs := flag.NewFlagSet("at", flag.ExitOnError)
	tf := newTerrainFlags(fs)
	points, err := parsePoints(parseCommand(fs, args))
	if err != nil {
		return err
	}

	field, err := tf.load()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "x\tz\ttile\televation\t")
	for _, p := range points {
		fmt.Fprintln(w, describe(field, p[0], p[1]))
	}
	return w.Flush()
}

func describe(field *terrain.Field, x, z float32) string {
	tile := "-"
	if t, ok := field.TileAt(x, z); ok {
		tile = fmt.Sprintf("(%.2f, %.2f)", t.Position.X, t.Position.Z)
	}

	elevation := ""
	y, err := field.ElevationAt(x, z)
	switch {
	case err == nil:
		elevation = strconv.FormatFloat(float64(y), 'f', 4, 32)
	case errors.Is(err, terrain.ErrNotFound):
		elevation = "outside"
	case errors.Is(err, terrain.ErrDegeneratePlane):
		elevation = "degenerate"
	default:
		elevation = err.Error()
	}

	return fmt.Sprintf("%g\t%g\t%s\t%s\t", x, z, tile, elevation)
}

// parseCommand parses the flags of args and returns the coordinates that
// follow them. Flags stop at "--" or at the first argument that is not a
// flag or a flag value, so negative coordinates need no "--".
func parseCommand(fs *flag.FlagSet, args []string) []string {
	flags, coords := splitCoords(fs, args)
	fs.Parse(flags)
	return append(fs.Args(), coords...)
}

func splitCoords(fs *flag.FlagSet, args []string) (flags, coords []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return args[:i], args[i+1:]
		case !strings.HasPrefix(arg, "-") || isNumber(arg):
			return args[:i], args[i:]
		}

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) {
			i++ // value
		}
	}
	return args, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func parsePoints(args []string) ([][2]float32, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, errors.New("expected pairs of <x> <z> coordinates")
	}

	points := make([][2]float32, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		x, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, fmt.Errorf("x coordinate %q: %w", args[i], err)
		}
		z, err := strconv.ParseFloat(args[i+1], 32)
		if err != nil {
			return nil, fmt.Errorf("z coordinate %q: %w", args[i+1], err)
		}
		points = append(points, [2]float32{float32(x), float32(z)})
	}
	return points, nil
}

func cmdGrid(args []string) error {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	tf := newTerrainFlags(fs)
	n := fs.Int("n", 7, "Samples per side")
	fs.Parse(args)

	if *n < 1 {
		return fmt.Errorf("-n must be positive, got %d", *n)
	}

	field, err := tf.load()
	if err != nil {
		return err
	}

	rows := sampleGrid(field, *n)
	b := field.Bounds()
	step := b.Width / float32(*n)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 1, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "z \\ x\t")
	for col := 0; col < *n; col++ {
		fmt.Fprintf(w, "%.2f\t", b.MinX+(float32(col)+0.5)*step)
	}
	fmt.Fprintln(w)
	for row, samples := range rows {
		fmt.Fprintf(w, "%.2f\t", b.MinZ+(float32(row)+0.5)*step)
		for _, s := range samples {
			fmt.Fprintf(w, "%s\t", s)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// sampleGrid samples the elevation at the centres of an n x n grid laid over
// the field bounds.
func sampleGrid(field *terrain.Field, n int) [][]string {
	b := field.Bounds()
	stepX := b.Width / float32(n)
	stepZ := b.Height / float32(n)

	rows := make([][]string, n)
	for row := range rows {
		rows[row] = make([]string, n)
		z := b.MinZ + (float32(row)+0.5)*stepZ
		for col := range rows[row] {
			x := b.MinX + (float32(col)+0.5)*stepX
			if y, ok := field.HeightAt(x, z); ok {
				rows[row][col] = strconv.FormatFloat(float64(y), 'f', 3, 32)
			} else {
				rows[row][col] = "--"
			}
		}
	}
	return rows
}

// errNoRoute is returned when no walkable route joins two points.
var errNoRoute = errors.New("no walkable route")

func cmdPath(args []string) error {
	fs := flag.NewFlagSet("path", flag.ExitOnError)
	tf := newTerrainFlags(fs)
	cell := fs.Float64("cell", 1, "Navigation cell size")
	climb := fs.Float64("climb", 0.5, "Largest height change between neighbouring cells")
	points, err := parsePoints(parseCommand(fs, args))
	if err != nil {
		return err
	}
	if len(points) != 2 {
		return errors.New("expected <x0> <z0> <x1> <z1>")
	}

	field, err := tf.load()
	if err != nil {
		return err
	}

	route, err := findRoute(context.Background(), field, float32(*cell), float32(*climb), points[0], points[1])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "step\tx\ty\tz\t")
	for i, p := range route {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t\n", i, p.X, p.Y, p.Z)
	}
	return w.Flush()
}

// findRoute searches a navigation grid sampled from field for a route
// between the cells holding from and to. The route is returned as the
// ground points at the centres of the visited cells.
func findRoute(ctx context.Context, field *terrain.Field, cell, climb float32, from, to [2]float32) ([]math.Vec3, error) {
	grid, err := world.BuildNavGrid(ctx, field, cell, climb, 0)
	if err != nil {
		return nil, err
	}

	sx, sy, ok := grid.CellAt(from[0], from[1])
	if !ok {
		return nil, fmt.Errorf("start (%g, %g): %w", from[0], from[1], terrain.ErrNotFound)
	}
	gx, gy, ok := grid.CellAt(to[0], to[1])
	if !ok {
		return nil, fmt.Errorf("goal (%g, %g): %w", to[0], to[1], terrain.ErrNotFound)
	}

	cells := world.NewPathFinder(grid).FindPath(sx, sy, gx, gy)
	if cells == nil {
		return nil, fmt.Errorf("%w from (%g, %g) to (%g, %g)", errNoRoute, from[0], from[1], to[0], to[1])
	}

	route := make([]math.Vec3, len(cells))
	for i, c := range cells {
		center := grid.CellCenter(c[0], c[1])
		y, _ := grid.HeightAt(c[0], c[1])
		route[i] = math.Vec3{X: center.X, Y: y, Z: center.Y}
	}
	return route, nil
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	tf := newTerrainFlags(fs)
	points, err := parsePoints(parseCommand(fs, args))
	if err != nil {
		return err
	}

	opts, err := tf.options()
	if err != nil {
		return err
	}
	field, err := terrain.Load(opts)
	if err != nil {
		return err
	}

	w, err := assets.NewWatcher(0, opts.Heightmap, opts.Texture)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report := func(field *terrain.Field) {
		for _, p := range points {
			fmt.Println(describe(field, p[0], p[1]))
		}
	}
	report(field)

	fmt.Fprintf(os.Stderr, "watching %s (Ctrl-C to stop)\n", opts.Heightmap)
	return w.Run(ctx, func(path string) {
		rebuilt, err := terrain.Load(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rebuild after %s changed: %v\n", filepath.Base(path), err)
			return
		}
		report(rebuilt)
	})
}

func cmdInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	force := fs.Bool("f", false, "Overwrite an existing file")
	fs.Parse(args)

	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s exists (use -f to overwrite)", path)
	}

	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", path)
	return nil
}
