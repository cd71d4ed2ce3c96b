package sim

// Result summarises a simulation run.
type Result struct {
	// Mishandled counts incidents without an idle agent at report time plus
	// incidents reached after the late threshold.
	Mishandled int
	NoAgent    int
	Late       int
	Incidents  int
	Dispatched int
	Resolved   int
}
