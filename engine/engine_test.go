package engine

import (
	"testing"

	"github.com/Carmen-Shannon/lumen-go/common"
	"github.com/Carmen-Shannon/lumen-go/engine/light_mapper"
	"github.com/Carmen-Shannon/lumen-go/engine/material"
	"github.com/Carmen-Shannon/lumen-go/engine/mesh"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayer() *scene_graph.Layer {
	layer := scene_graph.NewLayer("layer")
	cam := scene_graph.NewCamera("camera")
	layer.AddChild(&cam.Node)

	model := scene_graph.NewModel("cube", &mesh.Mesh{
		Name:       "cube mesh",
		Attributes: mesh.AttrPosition | mesh.AttrNormal,
		Subsets: []mesh.Subset{
			{Bounds: common.CenterExtents([3]float32{}, [3]float32{1, 1, 1})},
		},
	})
	model.Materials = []*material.DefaultMaterial{material.NewDefaultMaterial("mat")}
	model.SetPosition(0, 0, -100)
	layer.AddChild(&model.Node)
	return layer
}

func TestHeadlessPrepareFrame(t *testing.T) {
	e := NewEngine(
		WithViewport(800, 600),
		WithLayer(0, testLayer()),
	)

	results := e.PrepareFrame()
	require.Len(t, results, 1)
	assert.False(t, results[0].NothingToRender)
	require.NotNil(t, e.LayerData(0))
	assert.Len(t, e.LayerData(0).OpaqueRenderables(), 1)

	// Every PrepareFrame starts a fresh frame.
	results = e.PrepareFrame()
	assert.False(t, results[0].NothingToRender)
}

func TestLayerRegistration(t *testing.T) {
	e := NewEngine(WithViewport(800, 600))
	layer := testLayer()
	e.AddLayer(3, layer)

	assert.Same(t, layer, e.Layer(3))
	assert.NotNil(t, e.LayerData(3))
	assert.Nil(t, e.Layer(7))

	e.RemoveLayer(3)
	assert.Nil(t, e.Layer(3))
	assert.Nil(t, e.LayerData(3))
}

func TestBakeRunCollectsAndReturns(t *testing.T) {
	layer := testLayer()
	baked := layer.Children[1].AsModel()
	require.NotNil(t, baked)
	baked.UsedInBakedLighting = true

	lm := light_mapper.NewLightMapper(
		light_mapper.WithArgs([]string{light_mapper.BakeFlag}),
		light_mapper.WithEnvironment(func(string) string { return "" }),
	)
	e := NewEngine(
		WithViewport(800, 600),
		WithLayer(0, layer),
		WithLightMapper(lm),
	)

	// Bake mode prepares once, collects, and returns without blocking.
	e.Run()

	models := lm.Models()
	require.Len(t, models, 1)
	assert.Same(t, baked, models[0])
}
