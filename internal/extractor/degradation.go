package extractor

import "fmt"

// DegradationKind names a recoverable extraction problem.
type DegradationKind string

const (
	DegradationParseFailed     DegradationKind = "parse_failed"
	DegradationInvalidSelector DegradationKind = "invalid_selector"
	DegradationSelectorMiss    DegradationKind = "selector_miss"
	DegradationInvalidPattern  DegradationKind = "invalid_pattern"
)

// Degradation records that extraction fell back to a less precise result.
type Degradation struct {
	Kind   DegradationKind
	Detail string
}

func (d Degradation) String() string {
	if d.Detail == "" {
		return string(d.Kind)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
}
