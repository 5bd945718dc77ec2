package audio

import "fmt"

// Slice produces uniform cut points: 0, clipDuration, 2*clipDuration, …
// strictly below totalDuration. It always returns at least [0], even
// when totalDuration is smaller than clipDuration. This is the
// terminal fallback when detection finds nothing usable; it can only
// fail on a non-positive clipDuration, which is a configuration error.
func Slice(totalDuration, clipDuration float64) ([]float64, error) {
	if clipDuration <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidClipDuration, clipDuration)
	}

	cuts := []float64{0}
	for i := 1; float64(i)*clipDuration < totalDuration; i++ {
		cuts = append(cuts, float64(i)*clipDuration)
	}
	return cuts, nil
}
