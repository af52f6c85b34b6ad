package schedule

import "sort"

// DefaultBlockSize derives a block size from team count when the caller
// hasn't configured one: max(4, min(20, teamCount/2)).
func DefaultBlockSize(teamCount int) int {
	size := teamCount / 2
	if size < 4 {
		return 4
	}
	if size > 20 {
		return 20
	}
	return size
}

// ScaleRecipe proportionally rescales recipe so its values sum to
// blockSize, then distributes the rounding remainder round-robin in
// tag-sorted order. Returns recipe unchanged if it already sums to
// blockSize.
func ScaleRecipe(recipe map[string]int, blockSize int) map[string]int {
	total := 0
	for _, c := range recipe {
		total += c
	}
	if total == blockSize || total == 0 {
		out := make(map[string]int, len(recipe))
		for k, v := range recipe {
			out[k] = v
		}
		return out
	}

	tags := make([]string, 0, len(recipe))
	for tag := range recipe {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	scaled := make(map[string]int, len(recipe))
	assigned := 0
	for _, tag := range tags {
		c := int(float64(recipe[tag]) / float64(total) * float64(blockSize))
		scaled[tag] = c
		assigned += c
	}

	remainder := blockSize - assigned
	for i := 0; remainder > 0; i++ {
		scaled[tags[i%len(tags)]]++
		remainder--
	}
	return scaled
}

// SegmentSlots assigns each chronologically-sorted slot a Segment index
// (floor(i/blockSize)) and, for every full segment, stamps each slot's
// AssignedDivision using an interleaved template built from recipe: one
// slot drawn from each division with remaining quota, in recipe order,
// repeated until blockSize slots are stamped. Partial (tail) segments keep
// AssignedDivision == "any".
//
// slots must already be sorted chronologically (ClassifySlots guarantees
// this). recipe must already be scaled to sum to blockSize (see
// ScaleRecipe).
func SegmentSlots(slots []Slot, blockSize int, recipe map[string]int) []Slot {
	if blockSize <= 0 {
		return slots
	}

	tags := make([]string, 0, len(recipe))
	for tag := range recipe {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	template := buildTemplate(tags, recipe, blockSize)

	out := make([]Slot, len(slots))
	copy(out, slots)

	for i := range out {
		out[i].Segment = i / blockSize
	}

	for segStart := 0; segStart+blockSize <= len(out); segStart += blockSize {
		for k := 0; k < blockSize; k++ {
			out[segStart+k].AssignedDivision = template[k%len(template)]
		}
	}

	return out
}

// buildTemplate repeatedly draws one slot from each division with
// remaining quota (in tag order) until blockSize entries are produced.
func buildTemplate(tags []string, recipe map[string]int, blockSize int) []string {
	remaining := make(map[string]int, len(recipe))
	for _, tag := range tags {
		remaining[tag] = recipe[tag]
	}

	template := make([]string, 0, blockSize)
	for len(template) < blockSize {
		progressed := false
		for _, tag := range tags {
			if remaining[tag] > 0 {
				template = append(template, tag)
				remaining[tag]--
				progressed = true
				if len(template) == blockSize {
					break
				}
			}
		}
		if !progressed {
			break
		}
	}
	return template
}

// FullSegmentCount returns how many full blockSize-sized segments exist in
// a slice of n chronologically-assigned slots.
func FullSegmentCount(n, blockSize int) int {
	if blockSize <= 0 {
		return 0
	}
	return n / blockSize
}
