package layer_data

import (
	"log"

	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/Carmen-Shannon/lumen-go/engine/shader_key"
)

// maxLightCount returns the frame light cap: the full cap, or the reduced
// one on devices whose uniform buffer range cannot fit the full light table.
func (ld *layerData) maxLightCount() int {
	if ld.maxUniformRange < ReducedMaxLightThresholdBytes {
		return ReducedMaxLightCount
	}
	return MaxLightCount
}

// prepareLights builds the frame's light tables. Lights are taken in reverse
// declaration order so the most recently added lights win when the cap
// truncates; shadow maps are handed out in the same order up to their own
// cap, skipping fully baked lights whose shadowing already lives in the
// lightmaps. The global table excludes scoped lights; nodes inside a scope
// pick those up through lightListForNode. Each overflow logs once per layer
// data instance.
func (ld *layerData) prepareLights() {
	maxLights := ld.maxLightCount()
	shadowCount := 0

	for i := len(ld.lights) - 1; i >= 0; i-- {
		l := ld.lights[i]
		if !l.GlobalActive {
			continue
		}
		if len(ld.frameLights) >= maxLights {
			if !ld.tooManyLightsWarned {
				log.Printf("[LayerData] too many lights in layer %q, using the first %d", ld.layer.Name, maxLights)
				ld.tooManyLightsWarned = true
			}
			break
		}

		sl := ShaderLight{
			Light:     l,
			Direction: l.GlobalDirection(),
		}

		if l.CastsShadow && l.BakeMode != scene_graph.BakeModeAll {
			if shadowCount < MaxShadowMapCount {
				if _, err := ld.shadows.AddShadowMap(l); err != nil {
					log.Printf("[LayerData] shadow map for light %q failed: %v", l.Name, err)
				} else {
					sl.Shadows = true
					shadowCount++
				}
			} else if !ld.tooManyShadowsWarned {
				log.Printf("[LayerData] too many shadow casting lights in layer %q, using the first %d", ld.layer.Name, MaxShadowMapCount)
				ld.tooManyShadowsWarned = true
			}
		}

		if l.Scope != nil {
			ld.scopedLightsPresent = true
		}
		ld.frameLights = append(ld.frameLights, sl)
	}

	if !ld.scopedLightsPresent {
		ld.globalLights = ld.frameLights
	} else {
		for i := range ld.frameLights {
			if ld.frameLights[i].Light.Scope == nil {
				ld.unscopedLights = append(ld.unscopedLights, ld.frameLights[i])
			}
		}
		ld.globalLights = ld.unscopedLights
	}
	ld.globalLightFlags = append(ld.globalLightFlags, lightKeyFlags(ld.globalLights)...)
}

// keyFlagsFor returns the shader key light flags for a light list, reusing
// the precomputed table when the list is the global one.
func (ld *layerData) keyFlagsFor(lights []ShaderLight) []shader_key.LightFlags {
	if len(lights) == len(ld.globalLights) && (len(lights) == 0 || &lights[0] == &ld.globalLights[0]) {
		return ld.globalLightFlags
	}
	return lightKeyFlags(lights)
}

// lightListForNode returns the lights shading a node. Nodes outside every
// scope alias the global table without copying, which keeps their shader key
// flags on the precomputed path; only nodes inside at least one applicable
// scope get a filtered list from the frame pool, capped at MaxLightsPerNode.
//
// Parameters:
//   - n: the renderable's node
//
// Returns:
//   - []ShaderLight: the lights to shade with
func (ld *layerData) lightListForNode(n *scene_graph.Node) []ShaderLight {
	if !ld.scopedLightsPresent {
		return ld.globalLights
	}

	inScope := false
	for i := range ld.frameLights {
		scope := ld.frameLights[i].Light.Scope
		if scope != nil && n.IsDescendantOf(scope) {
			inScope = true
			break
		}
	}
	if !inScope {
		return ld.globalLights
	}

	arena := ld.lightPool.Get()
	count := 0
	for i := range ld.frameLights {
		sl := &ld.frameLights[i]
		if sl.Light.Scope != nil && !n.IsDescendantOf(sl.Light.Scope) {
			continue
		}
		if count == MaxLightsPerNode {
			break
		}
		arena[count] = *sl
		count++
	}
	return arena[:count]
}

// lightKeyFlags converts a light list into the per-light flags packed into
// the shader variant key.
func lightKeyFlags(lights []ShaderLight) []shader_key.LightFlags {
	out := make([]shader_key.LightFlags, len(lights))
	for i := range lights {
		l := lights[i].Light
		out[i] = shader_key.LightFlags{
			PointOrSpot: l.LightType != scene_graph.LightDirectional,
			Spot:        l.LightType == scene_graph.LightSpot,
			Shadow:      lights[i].Shadows,
		}
	}
	return out
}
