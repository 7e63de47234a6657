package scene_graph

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*Light)

// WithLightColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a Light
func WithLightColor(r, g, b float32) LightBuilderOption {
	return func(l *Light) {
		l.Color = [3]float32{r, g, b}
	}
}

// WithBrightness is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - brightness: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the brightness option to a Light
func WithBrightness(brightness float32) LightBuilderOption {
	return func(l *Light) {
		l.Brightness = brightness
	}
}

// WithFade is an option builder that sets the attenuation terms for point and
// spot lights.
//
// Parameters:
//   - constant: the constant attenuation term
//   - linear: the linear attenuation term
//   - quadratic: the quadratic attenuation term
//
// Returns:
//   - LightBuilderOption: a function that applies the fade option to a Light
func WithFade(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *Light) {
		l.ConstantFade = constant
		l.LinearFade = linear
		l.QuadraticFade = quadratic
	}
}

// WithCone is an option builder that sets the inner and outer cone half-angles
// for spot lights. Angles are specified in degrees.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the cone option to a Light
func WithCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *Light) {
		l.InnerConeAngle = innerDeg
		l.ConeAngle = outerDeg
	}
}

// WithShadows is an option builder that enables shadow casting with the given
// map resolution exponent (map size = 1 << res).
//
// Parameters:
//   - res: the shadow map resolution exponent
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow option to a Light
func WithShadows(res uint32) LightBuilderOption {
	return func(l *Light) {
		l.CastsShadow = true
		l.ShadowMapRes = res
	}
}

// WithScope is an option builder that restricts the light to the subtree
// rooted at the given node.
//
// Parameters:
//   - scope: the subtree root, or nil for layer-wide lighting
//
// Returns:
//   - LightBuilderOption: a function that applies the scope option to a Light
func WithScope(scope *Node) LightBuilderOption {
	return func(l *Light) {
		l.Scope = scope
	}
}

// WithBakeMode is an option builder that sets lightmap baking participation.
//
// Parameters:
//   - mode: the bake mode
//
// Returns:
//   - LightBuilderOption: a function that applies the bake mode option to a Light
func WithBakeMode(mode LightBakeMode) LightBuilderOption {
	return func(l *Light) {
		l.BakeMode = mode
	}
}
