/*
Package decoder carries the configuration shared by the decoding
sub-packages.
*/
package decoder

// Config bundles the decoding options the chart parser recognizes.
type Config struct {
	// PopLimit bounds cube-pruning pops per span; 0 means unbounded.
	PopLimit int
	// UseDotChart selects the dot-chart CKY strategy; false selects the
	// CKY+ strategy without a dot chart.
	UseDotChart bool
	// TrueOOVsOnly controls OOV-rule creation in the external OOV loader;
	// the chart itself only passes it through.
	TrueOOVsOnly bool
	// BeamWidth is the inside-beam cutoff for cell insertion; 0 disables
	// beam pruning.
	BeamWidth float64
	// Cancelled is an optional cooperative cancel token, checked at span
	// boundaries. On cancellation the chart discards all partial state
	// and reports no derivation.
	Cancelled func() bool
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		PopLimit:    100,
		UseDotChart: true,
	}
}
