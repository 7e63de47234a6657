package light_mapper

// LightMapperBuilderOption is a function that configures a LightMapper
// instance during construction.
type LightMapperBuilderOption func(*lightMapper)

// WithArgs is an option builder that replaces the command line arguments the
// bake toggle is detected from. Intended for tests and embedding hosts.
//
// Parameters:
//   - args: the arguments to scan (without the program name)
//
// Returns:
//   - LightMapperBuilderOption: a function that applies the args option
func WithArgs(args []string) LightMapperBuilderOption {
	return func(lm *lightMapper) {
		lm.args = args
	}
}

// WithEnvironment is an option builder that replaces the environment lookup
// the bake toggle is detected from.
//
// Parameters:
//   - lookup: the environment lookup function
//
// Returns:
//   - LightMapperBuilderOption: a function that applies the environment option
func WithEnvironment(lookup func(string) string) LightMapperBuilderOption {
	return func(lm *lightMapper) {
		lm.env = lookup
	}
}
