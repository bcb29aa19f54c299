package geometry

import "fmt"

// Placement describes where scaled content lands inside a fixed-size target.
// All values are in target pixel coordinates.
type Placement struct {
	DrawWidth  float64
	DrawHeight float64
	OffsetX    float64
	OffsetY    float64
}

// FitContain computes the largest placement of content inside a target that
// preserves the content aspect ratio, applies a fractional padding margin on
// the constrained axis and centers the result. Padding must be in (0, 1];
// a padding of 0.9 leaves a 10% margin.
func FitContain(contentWidth, contentHeight, targetWidth, targetHeight, padding float64) (Placement, error) {
	if contentWidth <= 0 || contentHeight <= 0 {
		return Placement{}, fmt.Errorf("content dimensions must be positive, got %gx%g", contentWidth, contentHeight)
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return Placement{}, fmt.Errorf("target dimensions must be positive, got %gx%g", targetWidth, targetHeight)
	}
	if padding <= 0 || padding > 1 {
		return Placement{}, fmt.Errorf("padding factor must be in (0, 1], got %g", padding)
	}

	contentAspect := contentWidth / contentHeight
	targetAspect := targetWidth / targetHeight

	var place Placement
	if contentAspect > targetAspect {
		// Content is relatively wider, width is the constrained axis
		place.DrawWidth = targetWidth * padding
		place.DrawHeight = place.DrawWidth / contentAspect
	} else {
		place.DrawHeight = targetHeight * padding
		place.DrawWidth = place.DrawHeight * contentAspect
	}
	place.OffsetX = (targetWidth - place.DrawWidth) / 2
	place.OffsetY = (targetHeight - place.DrawHeight) / 2
	return place, nil
}
