package game

import (
	"errors"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/engine/input"
	"github.com/Faultbox/midgard-terrain/internal/engine/picking"
	"github.com/Faultbox/midgard-terrain/internal/engine/terrain"
	"github.com/Faultbox/midgard-terrain/pkg/math"
)

type cameraMode int

const (
	modeWalk cameraMode = iota
	modeOrbit
)

func (m cameraMode) String() string {
	if m == modeOrbit {
		return "orbit"
	}
	return "walk"
}

// handleEvents applies one-shot key and mouse events.
//
//	Esc      quit
//	Tab      switch between walk and orbit camera
//	F1       toggle wireframe
//	F2       toggle tile outlines, walker markers and paths
//	F12      save a screenshot
//	Left     spawn a walker where the cursor meets the terrain
//	Shift+Left  route every walker to the cursor
func (g *Game) handleEvents() {
	for _, ev := range g.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			w, h := g.window.DrawableSize()
			g.renderer.Resize(int(w), int(h))

		case input.EventKeyDown:
			switch ev.Key {
			case sdl.SCANCODE_ESCAPE:
				g.running = false
			case sdl.SCANCODE_TAB:
				g.toggleCamera()
			case sdl.SCANCODE_F1:
				g.cfg.Graphics.Wireframe = !g.cfg.Graphics.Wireframe
				g.renderer.SetWireframe(g.cfg.Graphics.Wireframe)
			case sdl.SCANCODE_F2:
				g.cfg.Graphics.ShowTileGrid = !g.cfg.Graphics.ShowTileGrid
			case sdl.SCANCODE_F12:
				g.captureNext = true
			}

		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				g.click(ev.MouseX, ev.MouseY)
			}
		}
	}
}

func (g *Game) toggleCamera() {
	if g.mode == modeWalk {
		g.mode = modeOrbit
		g.orbit.LookAt(g.walk.Position)
	} else {
		g.mode = modeWalk
		g.walk.Place(g.orbit.Target.X, g.orbit.Target.Z)
	}
	g.log.Debug("camera mode", zap.Stringer("mode", g.mode))
}

// updateCamera applies held keys and mouse drags.
func (g *Game) updateCamera(dt float32) {
	forward := g.input.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W)
	right := g.input.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D)
	dx, dy := g.input.MouseDelta()
	dragging := g.input.IsButtonHeld(sdl.BUTTON_RIGHT)

	switch g.mode {
	case modeWalk:
		if dragging {
			g.walk.Look(float32(dx), float32(dy))
		}
		g.walk.Move(forward, right, dt)

	case modeOrbit:
		if dragging {
			g.orbit.Orbit(float32(dx), float32(dy))
		}
		if wheel := g.input.Wheel(); wheel != 0 {
			g.orbit.Zoom(float32(wheel))
		}
		up := g.input.Axis(sdl.SCANCODE_Q, sdl.SCANCODE_E)
		g.orbit.Pan(forward*dt, right*dt, up*dt)
	}
}

// view returns the active camera's view matrix and eye position.
func (g *Game) view() (math.Mat4, math.Vec3) {
	if g.mode == modeOrbit {
		return g.orbit.ViewMatrix(), g.orbit.Position()
	}
	return g.walk.ViewMatrix(), g.walk.Position
}

func (g *Game) click(x, y int) {
	view, _ := g.view()
	invViewProj := g.renderer.Projection().Mul(view).Inverse()
	w, h := g.window.GetSize()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), invViewProj)

	hit, ok := g.picker.Pick(ray, g.field)
	if !ok {
		return
	}

	if sdl.GetModState()&sdl.KMOD_SHIFT != 0 {
		g.sendWalkers(hit.X, hit.Z)
		return
	}

	walker, err := g.world.Spawn(hit.X, hit.Z)
	if err != nil {
		if !errors.Is(err, terrain.ErrNotFound) {
			g.log.Warn("spawn failed", zap.Error(err))
		}
		return
	}
	g.log.Info("walker spawned",
		zap.Uint32("id", walker.ID),
		zap.Float32("x", hit.X),
		zap.Float32("y", hit.Y),
		zap.Float32("z", hit.Z),
	)
}
