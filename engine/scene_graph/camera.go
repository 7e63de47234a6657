package scene_graph

import (
	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/chewxy/math32"
)

// ProjectionMode selects how a camera projects the scene.
type ProjectionMode uint8

const (
	// ProjectionPerspective is a standard perspective projection.
	ProjectionPerspective ProjectionMode = iota
	// ProjectionOrthographic is a parallel projection.
	ProjectionOrthographic
)

// Camera is a camera node. Derived matrices are recomputed by
// CalculateGlobalVariables during preparation; reading them before that
// returns the previous frame's values.
type Camera struct {
	Node

	// Projection selects perspective versus orthographic.
	Projection ProjectionMode
	// FOV is the vertical field of view in radians (perspective only).
	FOV float32
	// ClipNear and ClipFar are the depth clip planes.
	ClipNear, ClipFar float32
	// HorizontalMagnification scales the orthographic view volume.
	HorizontalMagnification float32
	// FrustumCulling enables culling of renderables against this camera.
	FrustumCulling bool

	// ProjectionMatrix is derived each frame.
	ProjectionMatrix [16]float32
	// ViewMatrix is the inverse global transform, derived each frame.
	ViewMatrix [16]float32
	// ViewProjection is projection times view, derived each frame.
	ViewProjection [16]float32
	// Frustum is extracted from ViewProjection, derived each frame.
	Frustum common.Frustum
}

// NewCamera creates a perspective camera with rendering defaults, then
// applies the provided options.
//
// Parameters:
//   - name: diagnostic identifier
//   - opts: optional configuration
//
// Returns:
//   - *Camera: the new camera node
func NewCamera(name string, opts ...CameraBuilderOption) *Camera {
	c := &Camera{
		Projection:              ProjectionPerspective,
		FOV:                     math32.Pi / 3,
		ClipNear:                10,
		ClipFar:                 10000,
		HorizontalMagnification: 1,
		FrustumCulling:          true,
	}
	c.initNode(name, NodeTypeCamera, c)
	common.Identity(c.ProjectionMatrix[:])
	common.Identity(c.ViewMatrix[:])
	common.Identity(c.ViewProjection[:])
	return applyCameraOptions(c, opts)
}

// CalculateGlobalVariables derives the projection, view and view-projection
// matrices plus the culling frustum for the given viewport. The node's global
// transform must be up to date.
//
// Parameters:
//   - viewportWidth: viewport width in pixels
//   - viewportHeight: viewport height in pixels
//
// Returns:
//   - bool: false if the viewport is degenerate and nothing was derived
func (c *Camera) CalculateGlobalVariables(viewportWidth, viewportHeight float32) bool {
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return false
	}
	aspect := viewportWidth / viewportHeight

	switch c.Projection {
	case ProjectionOrthographic:
		halfWidth := viewportWidth / 2 / c.HorizontalMagnification
		halfHeight := viewportHeight / 2 / c.HorizontalMagnification
		common.Orthographic(c.ProjectionMatrix[:], -halfWidth, halfWidth, -halfHeight, halfHeight, c.ClipNear, c.ClipFar)
	default:
		common.Perspective(c.ProjectionMatrix[:], c.FOV, aspect, c.ClipNear, c.ClipFar)
	}

	if !common.Invert4(c.ViewMatrix[:], c.GlobalTransform[:]) {
		common.Identity(c.ViewMatrix[:])
	}
	common.Mul4(c.ViewProjection[:], c.ProjectionMatrix[:], c.ViewMatrix[:])
	c.Frustum = common.ExtractFrustumFromMatrix(c.ViewProjection[:])
	return true
}

// SignedDistanceToBounds returns the distance from the camera plane (the
// plane through the camera position facing forward) to a world-space box,
// for detail level selection:
//   - a box straddling the plane yields 0
//   - a box fully in front yields the nearest corner distance
//   - a box fully behind yields the negated farthest corner distance
//   - orthographic cameras always yield 1, detail does not scale with distance
//
// Parameters:
//   - b: the box in world space
//
// Returns:
//   - float32: the signed plane distance
func (c *Camera) SignedDistanceToBounds(b common.Bounds3) float32 {
	if c.Projection == ProjectionOrthographic {
		return 1
	}
	normal := c.GlobalDirection()
	pos := c.GlobalPosition()
	plane := common.Plane{Normal: normal, Distance: -common.Dot3(normal, pos)}

	maxDist := plane.DistanceTo(b.SupportPoint(normal))
	minDist := plane.DistanceTo(b.SupportPoint(common.Scale3(normal, -1)))

	if minDist < 0 && maxDist > 0 {
		return 0
	}
	if minDist >= 0 {
		return minDist
	}
	return -maxDist
}

// LevelOfDetailMultiplier converts world-space detail distances into the
// screen-coverage ratio used for detail level selection. Perspective cameras
// scale with the field of view; orthographic cameras use a constant factor
// since coverage does not change with distance.
//
// Parameters:
//   - viewportHeight: viewport height in pixels
//
// Returns:
//   - float32: the detail distance multiplier
func (c *Camera) LevelOfDetailMultiplier(viewportHeight float32) float32 {
	if viewportHeight <= 0 {
		return 1
	}
	if c.Projection == ProjectionOrthographic {
		return 1 / viewportHeight
	}
	return 2 * math32.Tan(c.FOV/2) / viewportHeight
}
