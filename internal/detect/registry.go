package detect

import "fmt"

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "edge", "":
		return NewEdgeDetector(), nil
	case "ml":
		return nil, fmt.Errorf("ML detector not yet implemented")
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
