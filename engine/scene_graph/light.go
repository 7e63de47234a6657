package scene_graph

// LightType distinguishes the supported light sources.
type LightType uint8

const (
	// LightDirectional illuminates along a single direction from infinity.
	LightDirectional LightType = iota
	// LightPoint radiates from a position in all directions.
	LightPoint
	// LightSpot radiates from a position within a cone.
	LightSpot
)

// LightBakeMode selects how a light participates in lightmap baking.
type LightBakeMode uint8

const (
	// BakeModeDisabled keeps the light fully dynamic.
	BakeModeDisabled LightBakeMode = iota
	// BakeModeIndirect bakes only indirect contribution.
	BakeModeIndirect
	// BakeModeAll bakes direct and indirect contribution.
	BakeModeAll
)

// Light is a light source node. Construct with NewLight; fields may be
// mutated afterwards and take effect on the next prepared frame.
type Light struct {
	Node

	// LightType is the source kind.
	LightType LightType
	// Color is the diffuse/specular RGB color.
	Color [3]float32
	// AmbientColor is added unshadowed to every surface.
	AmbientColor [3]float32
	// Brightness is the scalar intensity multiplier.
	Brightness float32
	// ConstantFade, LinearFade and QuadraticFade are the attenuation terms
	// for positional lights.
	ConstantFade, LinearFade, QuadraticFade float32
	// ConeAngle is the outer cone half-angle in degrees for spot lights.
	ConeAngle float32
	// InnerConeAngle is the inner cone half-angle in degrees for spot lights.
	InnerConeAngle float32

	// CastsShadow makes the light eligible for a shadow map.
	CastsShadow bool
	// ShadowBias offsets shadow depth comparisons.
	ShadowBias float32
	// ShadowFactor scales shadow darkness.
	ShadowFactor float32
	// ShadowMapRes is the shadow map resolution exponent (size = 1 << res).
	ShadowMapRes uint32
	// ShadowMapFar is the far plane of the shadow camera.
	ShadowMapFar float32
	// ShadowFilter is the blur radius applied to the shadow map.
	ShadowFilter float32

	// Scope restricts the light to the subtree rooted at this node. Nil means
	// the light applies to the whole layer.
	Scope *Node
	// BakeMode selects lightmap baking participation.
	BakeMode LightBakeMode
}

// NewLight creates a light of the given type with rendering defaults, then
// applies the provided options.
//
// Parameters:
//   - name: diagnostic identifier
//   - lightType: the source kind
//   - opts: optional configuration
//
// Returns:
//   - *Light: the new light node
func NewLight(name string, lightType LightType, opts ...LightBuilderOption) *Light {
	l := &Light{
		LightType:      lightType,
		Color:          [3]float32{1, 1, 1},
		Brightness:     1,
		ConstantFade:   1,
		ConeAngle:      40,
		InnerConeAngle: 30,
		ShadowBias:     0,
		ShadowFactor:   5,
		ShadowMapRes:   10,
		ShadowMapFar:   5000,
	}
	l.initNode(name, NodeTypeLight, l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}
