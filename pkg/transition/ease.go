package transition

// EaseFunc maps normalized time in [0,1] to eased progress.
type EaseFunc func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut accelerates through the first half and decelerates through the second.
func CubicInOut(t float64) float64 {
	if t <= 0 {
		return 0
	}

	if t >= 1 {
		return 1
	}

	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}

	t -= 2

	return (t*t*t + 2) / 2
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
