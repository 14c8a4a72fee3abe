package stockmath

import "sort"

// serviceLevels maps a cycle service level (percent) to its standard normal z-score
var serviceLevels = map[int]float64{
	50: 0.0,
	75: 0.674,
	80: 0.842,
	85: 1.036,
	90: 1.282,
	91: 1.341,
	92: 1.405,
	93: 1.476,
	94: 1.555,
	95: 1.645,
	96: 1.751,
	97: 1.881,
	98: 2.054,
	99: 2.326,
}

// ZScore resolves a service level percentage to its z value
func ZScore(serviceLevel int) (float64, bool) {
	z, ok := serviceLevels[serviceLevel]
	return z, ok
}

// ServiceLevels lists the supported service levels in ascending order
func ServiceLevels() []int {
	levels := make([]int, 0, len(serviceLevels))
	for level := range serviceLevels {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}
