package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Species groups genomes the driver judged mutually compatible under the
// configured distance threshold. It owns a private snapshot of its
// representative genome — never an alias into the live population — so
// that re-speciation in a later epoch compares against a fixed point
// rather than a genome that itself just mutated.
type Species struct {
	ID      SpeciesID
	Created int
	Age     int

	// Representant is this species' own copy of the genome new arrivals
	// are compared against. Always produced via Genome.Clone, never a
	// shared pointer into Population.
	Representant *Genome

	Members []GenomeID

	Fitness            float64
	AdjustedFitnessSum float64

	BestFitnessEver   float64
	StagnationCounter int
}

// NewSpecies creates a species born this generation, representing itself
// initially by repr (cloned).
func NewSpecies(id SpeciesID, generation int, repr *Genome) *Species {
	return &Species{
		ID:              id,
		Created:         generation,
		Representant:    repr.Clone(),
		Members:         []GenomeID{repr.ID},
		BestFitnessEver: math.Inf(-1),
	}
}

// AddMember records a genome as belonging to this species for the current
// generation.
func (s *Species) AddMember(id GenomeID) {
	s.Members = append(s.Members, id)
}

// resetMembers clears the member list ahead of a new speciation pass,
// keeping representative, age and stagnation bookkeeping intact.
func (s *Species) resetMembers() {
	s.Members = s.Members[:0]
}

// AdjustFitnesses applies explicit fitness sharing (each member's fitness
// divided by the species size) and returns the resulting sum, which the
// driver uses to compute this species' share of the next generation's
// population. Also updates Fitness (the species' raw mean fitness) and the
// stagnation-tracking BestFitnessEver.
func (s *Species) AdjustFitnesses(genomes map[GenomeID]*Genome) float64 {
	if len(s.Members) == 0 {
		s.Fitness = math.Inf(-1)
		s.AdjustedFitnessSum = 0
		return 0
	}

	var sum, adjustedSum float64
	n := float64(len(s.Members))
	for _, id := range s.Members {
		fit := genomes[id].Fitness
		sum += fit
		adjustedSum += fit / n
	}
	s.Fitness = sum / n
	s.AdjustedFitnessSum = adjustedSum

	best := math.Inf(-1)
	for _, id := range s.Members {
		if f := genomes[id].Fitness; f > best {
			best = f
		}
	}
	if best > s.BestFitnessEver {
		s.BestFitnessEver = best
		s.StagnationCounter = 0
	} else {
		s.StagnationCounter++
	}
	return adjustedSum
}

// ChampionID returns the id of this species' fittest current member.
func (s *Species) ChampionID(genomes map[GenomeID]*Genome) GenomeID {
	best := s.Members[0]
	bestFitness := genomes[best].Fitness
	for _, id := range s.Members[1:] {
		if f := genomes[id].Fitness; f > bestFitness {
			bestFitness = f
			best = id
		}
	}
	return best
}

// PickRepresentant chooses this species' representative for the next
// generation's speciation pass: either a uniformly random current member,
// or (policy "keep_champion") the fittest current member. The chosen
// genome is cloned, so the species' representative never aliases a live
// population entry.
func (s *Species) PickRepresentant(genomes map[GenomeID]*Genome, rng *rand.Rand, policy string) {
	var chosen GenomeID
	if policy == "keep_champion" {
		chosen = s.ChampionID(genomes)
	} else {
		chosen = s.Members[rng.Intn(len(s.Members))]
	}
	s.Representant = genomes[chosen].Clone()
	s.Age++
}

// SpeciateFirstMatch assigns every genome in order to the first existing
// species (scanned in species-list order) whose representative it is
// compatible with, creating a new species when none matches. This is
// NEToolKit's find_appropriate_species_for policy (first compatible match,
// not closest), which spec.md §4.4 step 7 calls for — not the teacher's
// closest-match re-speciation.
//
// The species in the argument are mutated in place (members reset and
// reassigned) and newly created species are appended. The returned slice,
// which shares the argument's backing array and must be used in its place,
// holds only the species that ended up with at least one member.
// nextID is advanced for every species created.
func SpeciateFirstMatch(
	species []*Species,
	order []GenomeID,
	genomes map[GenomeID]*Genome,
	generation int,
	c1, c2, c3, threshold float64,
	nextID *SpeciesID,
) []*Species {
	for _, s := range species {
		s.resetMembers()
	}

	for _, gid := range order {
		g := genomes[gid]
		placed := false
		for _, s := range species {
			if g.IsCompatible(s.Representant, c1, c2, c3, threshold) {
				s.AddMember(gid)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		id := *nextID
		*nextID++
		newSpecies := NewSpecies(id, generation, g)
		species = append(species, newSpecies)
	}

	// Drop any species that picked up no members this round (its old
	// representative was compatible with nothing left).
	survivors := species[:0]
	for _, s := range species {
		if len(s.Members) > 0 {
			survivors = append(survivors, s)
		}
	}
	return survivors
}

// ComputeOffspringQuotas distributes targetPopulationSize offspring slots
// across species in proportion to each species' adjusted-fitness share.
// Integer truncation leaves a remainder, which spec.md §4.4 step 5 assigns
// entirely to the single fittest species — a deliberate deviation from the
// teacher's random-species remainder distribution in computeSpawnAmounts.
func ComputeOffspringQuotas(speciesList []*Species, targetPopulationSize int) map[SpeciesID]int {
	quotas := make(map[SpeciesID]int, len(speciesList))
	if len(speciesList) == 0 {
		return quotas
	}

	var totalAdjusted float64
	for _, s := range speciesList {
		totalAdjusted += s.AdjustedFitnessSum
	}

	assigned := 0
	if totalAdjusted <= 0 {
		// No signal to proportion by: split evenly.
		base := targetPopulationSize / len(speciesList)
		for _, s := range speciesList {
			quotas[s.ID] = base
			assigned += base
		}
	} else {
		for _, s := range speciesList {
			share := int(math.Floor(s.AdjustedFitnessSum / totalAdjusted * float64(targetPopulationSize)))
			quotas[s.ID] = share
			assigned += share
		}
	}

	remainder := targetPopulationSize - assigned
	if remainder > 0 {
		fittest := speciesList[0]
		for _, s := range speciesList[1:] {
			if s.Fitness > fittest.Fitness {
				fittest = s
			}
		}
		quotas[fittest.ID] += remainder
	}
	return quotas
}

// membersBySurvivalPool returns the species' members sorted best-fitness
// first, truncated to the top survivalThreshold fraction (always at least
// one genome) — the pool eligible to parent this species' offspring.
func (s *Species) membersBySurvivalPool(genomes map[GenomeID]*Genome, survivalThreshold float64) []GenomeID {
	sorted := make([]GenomeID, len(s.Members))
	copy(sorted, s.Members)
	sort.Slice(sorted, func(i, j int) bool {
		return genomes[sorted[i]].Fitness > genomes[sorted[j]].Fitness
	})
	cutoff := int(math.Ceil(float64(len(sorted)) * survivalThreshold))
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > len(sorted) {
		cutoff = len(sorted)
	}
	return sorted[:cutoff]
}

// Reproduce fills quota offspring slots for this species: the species
// champion is copied through unchanged once the species exceeds
// EliteThreshold members, and the rest are produced by crossover (with
// probability p_crossover) or straight mutation of a parent drawn from the
// survival pool.
func (s *Species) Reproduce(
	quota int,
	genomes map[GenomeID]*Genome,
	pool *InnovationPool,
	rng *rand.Rand,
	cfg *Config,
	nextGenomeID *GenomeID,
) []*Genome {
	if quota <= 0 {
		return nil
	}

	parentPool := s.membersBySurvivalPool(genomes, cfg.Species.SurvivalThreshold)

	offspring := make([]*Genome, 0, quota)
	// spec.md §4.3: the fittest member is copied through unmodified as an
	// elite when the quota is at least one and the species' size exceeds
	// the configured elite-size threshold.
	if quota >= 1 && len(s.Members) > cfg.Species.EliteThreshold {
		elite := genomes[s.ChampionID(genomes)].Clone()
		elite.ID = *nextGenomeID
		*nextGenomeID++
		offspring = append(offspring, elite)
	}

	for len(offspring) < quota {
		parent1ID := parentPool[rng.Intn(len(parentPool))]
		parent1 := genomes[parent1ID]
		var child *Genome
		if rng.Float64() < cfg.Genome.PCrossover && len(parentPool) > 1 {
			parent2ID := parent1ID
			for parent2ID == parent1ID {
				parent2ID = parentPool[rng.Intn(len(parentPool))]
			}
			child = parent1.Crossover(genomes[parent2ID], *nextGenomeID, rng, &cfg.Genome)
			*nextGenomeID++
			// A child produced by crossover skips mutation on a fair coin.
			if rng.Float64() < 0.5 {
				child = child.MutateRandom(pool, rng, &cfg.Genome)
			}
		} else {
			child = parent1.MutateRandom(pool, rng, &cfg.Genome)
			child.ID = *nextGenomeID
			*nextGenomeID++
		}
		offspring = append(offspring, child)
	}
	return offspring
}
