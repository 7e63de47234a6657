package layer_data

import (
	"log"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
)

// assignReflectionProbes matches reflection receiving renderables to the
// active probe whose box intersects their world bounds, nearest probe center
// winning when several overlap, then registers every referenced probe with
// the reflection map manager so its cube map exists before the reflection
// pass.
func (ld *layerData) assignReflectionProbes() {
	if len(ld.probes) == 0 {
		return
	}

	type probeBox struct {
		probe *scene_graph.ReflectionProbe
		box   common.Bounds3
		used  bool
	}
	boxes := make([]probeBox, 0, len(ld.probes))
	for _, p := range ld.probes {
		if !p.GlobalActive {
			continue
		}
		boxes = append(boxes, probeBox{probe: p, box: p.WorldBox()})
	}
	if len(boxes) == 0 {
		return
	}

	assign := func(objects []RenderableHandle) {
		for _, h := range objects {
			obj := h.Obj
			if !obj.Flags.Has(FlagReceivesReflections) {
				continue
			}
			bestDistSq := float32(-1)
			for i := range boxes {
				pb := &boxes[i]
				if !pb.box.Intersects(obj.GlobalBounds) {
					continue
				}
				d := common.Sub3(pb.box.Center(), obj.WorldCenter)
				distSq := common.LengthSq3(d)
				if bestDistSq < 0 || distSq < bestDistSq {
					bestDistSq = distSq
					obj.ReflectionProbe = pb.probe
					pb.used = true
				}
			}
		}
	}
	assign(ld.opaqueObjects)
	assign(ld.transparentObjects)
	assign(ld.screenTextureObjects)

	for i := range boxes {
		pb := &boxes[i]
		// Pre-baked probes are registered even when unreferenced so their
		// texture is resident if a later frame picks them up.
		if !pb.used && pb.probe.Texture == nil {
			continue
		}
		if _, err := ld.refls.AddEntry(pb.probe); err != nil {
			log.Printf("[LayerData] reflection map for probe %q failed: %v", pb.probe.Name, err)
		}
	}
}
