package scene_graph

import (
	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
)

// ProbeRefreshMode selects how often a reflection probe re-renders.
type ProbeRefreshMode uint8

const (
	// ProbeRefreshFirstFrame renders the probe once.
	ProbeRefreshFirstFrame ProbeRefreshMode = iota
	// ProbeRefreshEveryFrame re-renders the probe continuously.
	ProbeRefreshEveryFrame
)

// ReflectionProbe captures the surroundings into a cubemap that reflective
// models inside its box sample. When several probes contain a model, the one
// whose center is nearest wins.
type ReflectionProbe struct {
	Node

	// BoxSize is the full extent of the capture volume.
	BoxSize [3]float32
	// BoxOffset shifts the volume relative to the node position.
	BoxOffset [3]float32
	// ParallaxCorrection reprojects reflections against the box walls.
	ParallaxCorrection bool
	// RefreshMode selects re-render frequency.
	RefreshMode ProbeRefreshMode
	// TimeSlicing spreads cube face renders over frames when true.
	TimeSlicing bool
	// Texture is an optional pre-baked cubemap. Probes with a texture always
	// get a reflection map entry even with no assigned renderables.
	Texture *material.Texture
}

// NewReflectionProbe creates a probe with a unit capture volume.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *ReflectionProbe: the new probe node
func NewReflectionProbe(name string) *ReflectionProbe {
	p := &ReflectionProbe{
		BoxSize: [3]float32{100, 100, 100},
	}
	p.initNode(name, NodeTypeReflectionProbe, p)
	return p
}

// WorldBox returns the capture volume in world space, centered on the node's
// global position plus the offset. The node's global transform must be up to
// date.
//
// Returns:
//   - common.Bounds3: the world-space capture box
func (p *ReflectionProbe) WorldBox() common.Bounds3 {
	center := common.Add3(p.GlobalPosition(), p.BoxOffset)
	return common.CenterExtents(center, common.Scale3(p.BoxSize, 0.5))
}
