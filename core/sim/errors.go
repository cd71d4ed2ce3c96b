package sim

import "errors"

var (
	// ErrMissingGraph is returned when no graph, or a graph for another year,
	// is supplied.
	ErrMissingGraph = errors.New("sim: district graph not built for requested year")
	// ErrInvalidAgentCount is returned for agent counts lower than one.
	ErrInvalidAgentCount = errors.New("sim: agent count must be positive")
	// ErrInvalidPeriod is returned for dates that do not exist in the calendar.
	ErrInvalidPeriod = errors.New("sim: invalid period")
)
