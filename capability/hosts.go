package capability

// Built-in host output types. Addressable outputs build on LightOutput and
// add AddressableOutput.
var (
	LightOutput         = NewHostType("light_output", nil)
	MonochromaticOutput = NewHostType("monochromatic", nil, LightOutput)
	RGBOutput           = NewHostType("rgb", nil, LightOutput)
	AddressableLight    = NewHostType("addressable_light", []Token{AddressableOutput}, LightOutput)
	FastLEDOutput       = NewHostType("fastled", nil, AddressableLight)
	PartitionOutput     = NewHostType("partition", nil, AddressableLight)
)

// DefaultRegistry returns a registry holding the built-in host types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(LightOutput, MonochromaticOutput, RGBOutput, AddressableLight, FastLEDOutput, PartitionOutput)
	return r
}
