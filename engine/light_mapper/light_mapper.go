// package light_mapper collects the models that participate in lightmap
// baking. Baking is an offline operation: the process is started with the
// bake toggle, prepares its layers once, and the light mapper gathers the
// bake-enabled models so a baker can process them before the process exits.
package light_mapper

import (
	"log"
	"os"
	"sync"

	"github.com/Carmen-Shannon/lumen-go/engine/layer_data"
	"github.com/Carmen-Shannon/lumen-go/engine/scene_graph"
)

// BakeFlag is the command line argument that requests a lightmap bake.
const BakeFlag = "--bake-lightmaps"

// BakeEnv is the environment variable that requests a lightmap bake when set
// to anything other than "", "0" or "false".
const BakeEnv = "LUMEN_BAKE_LIGHTMAPS"

// LightMapper gathers lightmap bake requests across prepared layers.
type LightMapper interface {
	// Enabled reports whether a bake was requested through the command line
	// or the environment.
	//
	// Returns:
	//   - bool: true when the process should bake and exit
	Enabled() bool

	// CollectLayer appends the layer's baked-lighting models from its last
	// prepared frame, deduplicating models seen across layers.
	//
	// Parameters:
	//   - ld: a layer whose frame has been prepared
	CollectLayer(ld layer_data.LayerData)

	// Models returns the collected bake-enabled models in collection order.
	//
	// Returns:
	//   - []*scene_graph.Model: the models to bake
	Models() []*scene_graph.Model

	// Report logs a bake summary and returns the model count.
	//
	// Returns:
	//   - int: the number of models collected
	Report() int

	// Reset drops all collected models.
	Reset()
}

type lightMapper struct {
	mu sync.Mutex

	args []string
	env  func(string) string

	enabled bool
	models  []*scene_graph.Model
	seen    map[*scene_graph.Model]struct{}
}

var _ LightMapper = &lightMapper{}

// NewLightMapper creates a light mapper, detecting the bake toggle from the
// process arguments and environment unless options override them.
//
// Parameters:
//   - options: optional configuration
//
// Returns:
//   - LightMapper: the new light mapper
func NewLightMapper(options ...LightMapperBuilderOption) LightMapper {
	lm := &lightMapper{
		args: os.Args[1:],
		env:  os.Getenv,
		seen: make(map[*scene_graph.Model]struct{}),
	}
	for _, option := range options {
		option(lm)
	}
	lm.enabled = lm.detect()
	return lm
}

func (lm *lightMapper) detect() bool {
	for _, arg := range lm.args {
		if arg == BakeFlag {
			return true
		}
	}
	switch lm.env(BakeEnv) {
	case "", "0", "false":
		return false
	}
	return true
}

func (lm *lightMapper) Enabled() bool {
	return lm.enabled
}

func (lm *lightMapper) CollectLayer(ld layer_data.LayerData) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, m := range ld.BakedLightingModels() {
		if _, ok := lm.seen[m]; ok {
			continue
		}
		lm.seen[m] = struct{}{}
		lm.models = append(lm.models, m)
	}
}

func (lm *lightMapper) Models() []*scene_graph.Model {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]*scene_graph.Model, len(lm.models))
	copy(out, lm.models)
	return out
}

func (lm *lightMapper) Report() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	log.Printf("[LightMapper] %d model(s) queued for lightmap baking", len(lm.models))
	for _, m := range lm.models {
		log.Printf("[LightMapper]   - %s", m.Name)
	}
	return len(lm.models)
}

func (lm *lightMapper) Reset() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.models = lm.models[:0]
	lm.seen = make(map[*scene_graph.Model]struct{})
}
