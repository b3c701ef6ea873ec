package db

// EditDistance returns the Levenshtein distance between a and b counted in
// runes. Computation stops early once every path exceeds max; the result is
// then max+1. A negative max disables the bound.
func EditDistance(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	if max >= 0 {
		diff := len(ra) - len(rb)
		if diff < 0 {
			diff = -diff
		}
		if diff > max {
			return max + 1
		}
	}
	if len(ra) == 0 {
		return clamp(len(rb), max)
	}
	if len(rb) == 0 {
		return clamp(len(ra), max)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			v := prev[j-1] + cost
			if del := prev[j] + 1; del < v {
				v = del
			}
			if ins := curr[j-1] + 1; ins < v {
				v = ins
			}
			curr[j] = v
			if v < rowMin {
				rowMin = v
			}
		}
		if max >= 0 && rowMin > max {
			return max + 1
		}
		prev, curr = curr, prev
	}
	return clamp(prev[len(rb)], max)
}

func clamp(d, max int) int {
	if max >= 0 && d > max {
		return max + 1
	}
	return d
}
