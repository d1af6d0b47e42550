package world

// MovementController walks a Walker along A* paths.
type MovementController struct {
	pathFinder *PathFinder
	walker     *Walker

	// Current path
	path      [][2]int
	pathIndex int

	IsFollowingPath bool
}

// NewMovementController creates a new movement controller.
func NewMovementController(pathFinder *PathFinder, walker *Walker) *MovementController {
	return &MovementController{
		pathFinder: pathFinder,
		walker:     walker,
	}
}

// SetWalker sets the walker to control.
func (mc *MovementController) SetWalker(walker *Walker) {
	mc.walker = walker
	mc.ClearPath()
}

// MoveTo attempts to move to a destination cell.
// Returns the path if one exists, nil otherwise.
func (mc *MovementController) MoveTo(destX, destY int) [][2]int {
	if mc.walker == nil || mc.pathFinder == nil {
		return nil
	}

	startX, startY, ok := mc.pathFinder.grid.CellAt(mc.walker.Position.X, mc.walker.Position.Z)
	if !ok {
		return nil
	}

	path := mc.pathFinder.FindPath(startX, startY, destX, destY)
	if len(path) == 0 {
		return nil
	}

	// Skip the first node, it is the current cell
	if len(path) > 1 {
		mc.path = path[1:]
	} else {
		mc.path = path
	}
	mc.pathIndex = 0
	mc.IsFollowingPath = true

	mc.setNextWaypoint()

	return path
}

// MoveToWorld attempts to move to a world position.
func (mc *MovementController) MoveToWorld(worldX, worldZ float32) [][2]int {
	if mc.pathFinder == nil {
		return nil
	}
	cx, cy, ok := mc.pathFinder.grid.CellAt(worldX, worldZ)
	if !ok {
		return nil
	}
	return mc.MoveTo(cx, cy)
}

// Update hands the walker its next waypoint once it reaches the current one.
func (mc *MovementController) Update() {
	if mc.walker == nil {
		return
	}

	if mc.walker.State == StateFalling {
		mc.ClearPath()
		return
	}

	if mc.IsFollowingPath && !mc.walker.HasDestination && mc.pathIndex < len(mc.path) {
		mc.setNextWaypoint()
	}

	if mc.IsFollowingPath && mc.pathIndex >= len(mc.path) && !mc.walker.HasDestination {
		mc.IsFollowingPath = false
	}
}

// ClearPath stops the current path following.
func (mc *MovementController) ClearPath() {
	mc.path = nil
	mc.pathIndex = 0
	mc.IsFollowingPath = false
	if mc.walker != nil {
		mc.walker.ClearDestination()
	}
}

// Path returns the current path.
func (mc *MovementController) Path() [][2]int {
	return mc.path
}

// PathIndex returns the current index in the path.
func (mc *MovementController) PathIndex() int {
	return mc.pathIndex
}

func (mc *MovementController) setNextWaypoint() {
	if mc.pathIndex >= len(mc.path) {
		return
	}

	waypoint := mc.path[mc.pathIndex]
	center := mc.pathFinder.grid.CellCenter(waypoint[0], waypoint[1])
	mc.walker.SetDestination(center.X, center.Y)
	mc.pathIndex++
}
