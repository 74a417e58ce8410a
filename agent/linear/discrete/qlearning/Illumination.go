package qlearning

const (
	// MinIllumination is the lowest opacity of an illuminated cell
	MinIllumination float64 = 0.2

	illuminationScale float64 = 6
)

// Illumination returns the opacity in [0, 1] with which a driver should
// highlight a cell whose action values sum to sum, given the reward of
// the reward cell. Cells with a non-positive sum are not illuminated
// and have opacity 0. All other cells have opacity at least
// MinIllumination.
func Illumination(sum, reward float64) float64 {
	if sum <= 0 || reward <= 0 {
		return 0
	}

	opacity := (sum / reward) / illuminationScale
	if opacity < MinIllumination {
		return MinIllumination
	}
	if opacity > 1 {
		return 1
	}
	return opacity
}
