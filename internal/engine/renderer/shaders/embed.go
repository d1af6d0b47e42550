// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// TerrainVertexShader is the vertex shader for terrain tiles.
//
//go:embed terrain.vert
var TerrainVertexShader string

// TerrainFragmentShader is the fragment shader for terrain tiles.
//
//go:embed terrain.frag
var TerrainFragmentShader string

// LinesVertexShader is the vertex shader for debug overlays.
//
//go:embed lines.vert
var LinesVertexShader string

// LinesFragmentShader is the fragment shader for debug overlays.
//
//go:embed lines.frag
var LinesFragmentShader string
