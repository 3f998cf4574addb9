package tasks

import (
	"regexp"
	"strconv"
)

// progressShape is the normalized form of a structured progress message.
// Creation runs report "found N items", then "i/total" per email, then
// "i/total -> j/k" while persisting the offers of email i.
type progressShape struct {
	index    int
	total    int
	subIndex int
	subTotal int
	hasSub   bool
}

var (
	foundItemsRe = regexp.MustCompile(`^found (\d+) items?$`)
	ratioRe      = regexp.MustCompile(`^(\d+)/(\d+)$`)
	nestedRe     = regexp.MustCompile(`^(\d+)/(\d+) -> (\d+)/(\d+)$`)
)

// parseProgress extracts the structured shape from a progress message.
// Returns false when the message does not follow the vocabulary.
func parseProgress(message string) (progressShape, bool) {
	if m := nestedRe.FindStringSubmatch(message); m != nil {
		return progressShape{
			index:    atoi(m[1]),
			total:    atoi(m[2]),
			subIndex: atoi(m[3]),
			subTotal: atoi(m[4]),
			hasSub:   true,
		}, true
	}
	if m := ratioRe.FindStringSubmatch(message); m != nil {
		return progressShape{index: atoi(m[1]), total: atoi(m[2])}, true
	}
	if m := foundItemsRe.FindStringSubmatch(message); m != nil {
		return progressShape{total: atoi(m[1])}, true
	}
	return progressShape{}, false
}

// percent computes the bounded completion percentage for a shape.
// Nested batches interpolate within the current item: item i of total
// with j of k sub-items done counts as (i-1 + j/k) items.
func (p progressShape) percent() int {
	if p.total <= 0 {
		return 0
	}

	var fraction float64
	if p.hasSub && p.subTotal > 0 {
		fraction = (float64(p.index-1) + float64(p.subIndex)/float64(p.subTotal)) / float64(p.total)
	} else {
		fraction = float64(p.index) / float64(p.total)
	}

	return clampPercent(int(fraction * 100))
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
