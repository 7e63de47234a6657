package scene_graph

// CameraBuilderOption is a function that configures a Camera instance during construction.
type CameraBuilderOption func(*Camera)

func applyCameraOptions(c *Camera, opts []CameraBuilderOption) *Camera {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithProjection is an option builder that sets the projection mode.
//
// Parameters:
//   - mode: perspective or orthographic
//
// Returns:
//   - CameraBuilderOption: a function that applies the projection option to a Camera
func WithProjection(mode ProjectionMode) CameraBuilderOption {
	return func(c *Camera) {
		c.Projection = mode
	}
}

// WithFOV is an option builder that sets the vertical field of view.
//
// Parameters:
//   - radians: the field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that applies the field of view option to a Camera
func WithFOV(radians float32) CameraBuilderOption {
	return func(c *Camera) {
		c.FOV = radians
	}
}

// WithClipPlanes is an option builder that sets the near and far clip planes.
//
// Parameters:
//   - near: near clip distance
//   - far: far clip distance
//
// Returns:
//   - CameraBuilderOption: a function that applies the clip plane option to a Camera
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *Camera) {
		c.ClipNear = near
		c.ClipFar = far
	}
}

// WithFrustumCulling is an option builder that enables or disables frustum
// culling for renderables seen by this camera.
//
// Parameters:
//   - enabled: true to cull
//
// Returns:
//   - CameraBuilderOption: a function that applies the culling option to a Camera
func WithFrustumCulling(enabled bool) CameraBuilderOption {
	return func(c *Camera) {
		c.FrustumCulling = enabled
	}
}

// WithHorizontalMagnification is an option builder that sets the orthographic
// view volume scale.
//
// Parameters:
//   - mag: the magnification factor (must be > 0)
//
// Returns:
//   - CameraBuilderOption: a function that applies the magnification option to a Camera
func WithHorizontalMagnification(mag float32) CameraBuilderOption {
	return func(c *Camera) {
		c.HorizontalMagnification = mag
	}
}
