package audio

// Smoothstep returns the smoothstep interpolation for t in [0,1].
// Formula: 3t^2 - 2t^3.
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// ApplyGain scales a block in place. When from and to differ the gain moves
// between them across the block along a smoothstep curve, so a gain change
// lands without a step discontinuity. The last frame always gets exactly to.
func ApplyGain(block [][2]float64, from, to float64) {
	if from == to {
		if to == 1 {
			return
		}
		for i := range block {
			block[i][0] *= to
			block[i][1] *= to
		}
		return
	}

	n := float64(len(block))
	for i := range block {
		g := from + (to-from)*Smoothstep(float64(i+1)/n)
		block[i][0] *= g
		block[i][1] *= g
	}
}
