package scene_graph

import (
	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
)

// ParticleSystem is a CPU-simulated particle emitter node. The simulation
// itself runs outside the preparation pass; preparation only turns the
// system's current state into a transparent renderable.
type ParticleSystem struct {
	Node

	// BlendMode selects the framebuffer blend operation for the particles.
	BlendMode material.BlendMode
	// Billboard orients particles toward the camera when true.
	Billboard bool
	// ParticleCount is the live particle count this frame.
	ParticleCount int
	// LocalBounds encloses the live particles in node space.
	LocalBounds common.Bounds3
	// Texture is the optional sprite texture.
	Texture *material.Texture
}

// NewParticleSystem creates an empty particle system node.
//
// Parameters:
//   - name: diagnostic identifier
//
// Returns:
//   - *ParticleSystem: the new particle system node
func NewParticleSystem(name string) *ParticleSystem {
	p := &ParticleSystem{
		Billboard:   true,
		LocalBounds: common.EmptyBounds3(),
	}
	p.initNode(name, NodeTypeParticleSystem, p)
	return p
}
