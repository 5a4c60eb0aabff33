package analytics

import "math"

// Percentage returns round(used/limit*100). A non-positive limit yields 0.
func Percentage(used, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Round(float64(used) / float64(limit) * 100))
}
