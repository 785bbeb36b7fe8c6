package neat

import "sort"

// CullStagnant removes species that have gone `cap` consecutive generations
// without an improvement in their best-ever fitness, except for the
// `eliteCount` fittest species, which are never culled regardless of how
// long they have been stagnant.
//
// Grounded on the teacher's stagnation.go (sort-ascending-by-fitness,
// protect-the-top-N-from-the-end shape), adapted to read stagnation state
// directly off Species.StagnationCounter/BestFitnessEver (set by
// Species.AdjustFitnesses) instead of a separate fitness-history slice and
// external Stagnation manager.
func CullStagnant(speciesList []*Species, cap, eliteCount int) []*Species {
	if len(speciesList) == 0 {
		return speciesList
	}

	sorted := make([]*Species, len(speciesList))
	copy(sorted, speciesList)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Fitness < sorted[j].Fitness })

	n := len(sorted)
	survivors := make([]*Species, 0, n)
	for i, s := range sorted {
		protected := (n - i) <= eliteCount
		if protected || s.StagnationCounter < cap {
			survivors = append(survivors, s)
		}
	}
	return survivors
}
