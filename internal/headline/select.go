package headline

import "github.com/mohammad-safakhou/localseo/models"

// Select returns the headline at index clamped into [0, total-1],
// along with the effective index and the set size.
func Select(set models.HeadlineSet, index int) (string, int, int) {
	total := len(set.Headlines)
	if total == 0 {
		return "", 0, 0
	}
	if index > total-1 {
		index = total - 1
	}
	if index < 0 {
		index = 0
	}
	return set.Headlines[index], index, total
}

// Next is the regenerate cycle: (index+1) mod total.
func Next(index, total int) int {
	if total <= 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	return (index + 1) % total
}
