package conversion

import "fmt"

// Priority orders converter invocation within one event. Lower values
// run first; PriorityNormal is the default. The set is fixed; converter
// configuration refers to priorities by name.
type Priority int

const (
	// PriorityHighest runs before everything else.
	PriorityHighest Priority = iota

	// PriorityHigh runs before default-priority converters.
	PriorityHigh

	// PriorityNormal is the default converter priority.
	PriorityNormal

	// PriorityLow runs after default-priority converters.
	PriorityLow

	// PriorityLowest runs after everything else.
	PriorityLowest
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityHighest:
		return "highest"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityLowest:
		return "lowest"
	default:
		return "unknown"
	}
}

// ParsePriority resolves a priority name. Rule files and scripts refer
// to priorities by these names.
func ParsePriority(name string) (Priority, error) {
	switch name {
	case "highest":
		return PriorityHighest, nil
	case "high":
		return PriorityHigh, nil
	case "", "normal":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	case "lowest":
		return PriorityLowest, nil
	default:
		return PriorityNormal, fmt.Errorf("conversion: unknown priority %q", name)
	}
}
