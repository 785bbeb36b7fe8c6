package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genomeWithFitness(id GenomeID, fitness float64) *Genome {
	g := NewGenome(id, 2, 1)
	g.Fitness = fitness
	return g
}

func TestSpecies_AddMemberAppends(t *testing.T) {
	repr := genomeWithFitness(1, 1.0)
	s := NewSpecies(1, 0, repr)
	s.AddMember(2)
	s.AddMember(3)
	assert.Equal(t, []GenomeID{1, 2, 3}, s.Members)
}

func TestSpecies_AdjustFitnessesSharesFitness(t *testing.T) {
	repr := genomeWithFitness(1, 10.0)
	s := NewSpecies(1, 0, repr)
	s.AddMember(2)
	s.AddMember(3)

	genomes := map[GenomeID]*Genome{
		1: genomeWithFitness(1, 10.0),
		2: genomeWithFitness(2, 20.0),
		3: genomeWithFitness(3, 30.0),
	}

	sum := s.AdjustFitnesses(genomes)
	assert.InDelta(t, 20.0, sum, 1e-9) // (10+20+30)/3
	assert.InDelta(t, 20.0, s.Fitness, 1e-9)
}

func TestSpecies_AdjustFitnessesTracksStagnation(t *testing.T) {
	repr := genomeWithFitness(1, 1.0)
	s := NewSpecies(1, 0, repr)
	genomes := map[GenomeID]*Genome{1: genomeWithFitness(1, 1.0)}

	s.AdjustFitnesses(genomes)
	assert.Equal(t, 1.0, s.BestFitnessEver)
	assert.Equal(t, 0, s.StagnationCounter)

	// No improvement next round: stagnation counter increments.
	s.AdjustFitnesses(genomes)
	assert.Equal(t, 1, s.StagnationCounter)

	// Improvement resets it.
	genomes[1].Fitness = 5.0
	s.AdjustFitnesses(genomes)
	assert.Equal(t, 0, s.StagnationCounter)
	assert.Equal(t, 5.0, s.BestFitnessEver)
}

func TestSpecies_ChampionID(t *testing.T) {
	repr := genomeWithFitness(1, 1.0)
	s := NewSpecies(1, 0, repr)
	s.AddMember(2)
	s.AddMember(3)
	genomes := map[GenomeID]*Genome{
		1: genomeWithFitness(1, 1.0),
		2: genomeWithFitness(2, 9.0),
		3: genomeWithFitness(3, 4.0),
	}
	assert.Equal(t, GenomeID(2), s.ChampionID(genomes))
}

func TestSpecies_PickRepresentantUniformClonesChosenMember(t *testing.T) {
	repr := genomeWithFitness(1, 1.0)
	s := NewSpecies(1, 0, repr)
	s.AddMember(2)
	genomes := map[GenomeID]*Genome{
		1: genomeWithFitness(1, 1.0),
		2: genomeWithFitness(2, 2.0),
	}
	rng := newTestRng(1)
	s.PickRepresentant(genomes, rng, "uniform")

	assert.NotSame(t, genomes[1], s.Representant)
	assert.NotSame(t, genomes[2], s.Representant)
}

func TestSpecies_PickRepresentantKeepChampion(t *testing.T) {
	repr := genomeWithFitness(1, 1.0)
	s := NewSpecies(1, 0, repr)
	s.AddMember(2)
	genomes := map[GenomeID]*Genome{
		1: genomeWithFitness(1, 1.0),
		2: genomeWithFitness(2, 99.0),
	}
	rng := newTestRng(1)
	s.PickRepresentant(genomes, rng, "keep_champion")
	assert.Equal(t, 99.0, s.Representant.Fitness)
}

// spec.md §8 scenario 4: speciation birth. Start with one species everyone
// is compatible with; injecting an incompatible genome must create a
// second species.
func TestSpeciateFirstMatch_SpeciationBirth(t *testing.T) {
	a := genomeWithInnovs([]InnovationNumber{1, 2, 3, 4, 5}, 1.0)
	a.ID = 1
	b := genomeWithInnovs([]InnovationNumber{1, 2, 3, 4, 5}, 1.05)
	b.ID = 2

	genomes := map[GenomeID]*Genome{1: a, 2: b}
	species := []*Species{NewSpecies(1, 0, a)}
	nextID := SpeciesID(2)

	species = SpeciateFirstMatch(species, []GenomeID{1, 2}, genomes, 0, 1, 1, 0.4, 1.0, &nextID)
	require.Len(t, species, 1)
	assert.Len(t, species[0].Members, 2)

	// Inject a genome whose distance exceeds the threshold: a completely
	// disjoint gene set drives excess/disjoint counts up to ~1.83, well
	// past the threshold of 1.0 used here.
	c := genomeWithInnovs([]InnovationNumber{100, 101, 102, 103, 104, 105}, 50.0)
	c.ID = 3
	genomes[3] = c

	species = SpeciateFirstMatch(species, []GenomeID{1, 2, 3}, genomes, 1, 1, 1, 0.4, 1.0, &nextID)
	assert.Len(t, species, 2)
}

func TestSpeciateFirstMatch_DropsEmptySpecies(t *testing.T) {
	repr := genomeWithInnovs([]InnovationNumber{1, 2, 3, 4, 5}, 1.0)
	repr.ID = 1
	other := genomeWithInnovs([]InnovationNumber{100, 101, 102, 103, 104, 105}, -9.0)
	other.ID = 2

	genomes := map[GenomeID]*Genome{1: repr, 2: other}
	species := []*Species{NewSpecies(1, 0, repr)}
	nextID := SpeciesID(2)

	// Only genome 2 survives into this round and it is incompatible with
	// species 1's representative, so species 1 should end up empty and be
	// dropped while a fresh species absorbs genome 2.
	species = SpeciateFirstMatch(species, []GenomeID{2}, genomes, 1, 1, 1, 1, 0.4, &nextID)
	require.Len(t, species, 1)
	assert.Equal(t, []GenomeID{2}, species[0].Members)
}

func TestComputeOffspringQuotas_ProportionalWithRemainderToFittest(t *testing.T) {
	s1 := NewSpecies(1, 0, genomeWithFitness(1, 1))
	s1.AdjustedFitnessSum = 10
	s1.Fitness = 10
	s2 := NewSpecies(2, 0, genomeWithFitness(2, 1))
	s2.AdjustedFitnessSum = 5
	s2.Fitness = 5

	quotas := ComputeOffspringQuotas([]*Species{s1, s2}, 10)
	total := 0
	for _, q := range quotas {
		total += q
	}
	assert.Equal(t, 10, total)
	assert.GreaterOrEqual(t, quotas[s1.ID], quotas[s2.ID])
}

func TestComputeOffspringQuotas_EvenSplitWithoutFitnessSignal(t *testing.T) {
	s1 := NewSpecies(1, 0, genomeWithFitness(1, 1))
	s2 := NewSpecies(2, 0, genomeWithFitness(2, 1))

	quotas := ComputeOffspringQuotas([]*Species{s1, s2}, 10)
	assert.Equal(t, 5, quotas[s1.ID])
	assert.Equal(t, 5, quotas[s2.ID])
}

func TestComputeOffspringQuotas_EmptySpeciesList(t *testing.T) {
	quotas := ComputeOffspringQuotas(nil, 10)
	assert.Empty(t, quotas)
}

func TestSpecies_ReproduceRespectsQuota(t *testing.T) {
	cfg := testConfig(2, 1, 10, 10)
	pool := NewInnovationPool(2, 1)
	rng := newTestRng(22)

	repr := NewSeedGenome(1, 2, 1, pool, rng, 1.0)
	repr.Fitness = 1.0
	s := NewSpecies(1, 0, repr)

	genomes := map[GenomeID]*Genome{1: repr}
	for i := GenomeID(2); i <= 5; i++ {
		g := NewSeedGenome(i, 2, 1, pool, rng, 1.0)
		g.Fitness = float64(i)
		genomes[i] = g
		s.AddMember(i)
	}

	nextID := GenomeID(100)
	offspring := s.Reproduce(6, genomes, pool, rng, cfg, &nextID)
	assert.Len(t, offspring, 6)

	seen := map[GenomeID]bool{}
	for _, child := range offspring {
		assert.False(t, seen[child.ID], "every offspring must have a unique id")
		seen[child.ID] = true
	}
}

func TestSpecies_ReproduceZeroQuotaYieldsNoOffspring(t *testing.T) {
	cfg := testConfig(2, 1, 10, 10)
	pool := NewInnovationPool(2, 1)
	rng := newTestRng(1)
	repr := NewSeedGenome(1, 2, 1, pool, rng, 1.0)
	s := NewSpecies(1, 0, repr)
	genomes := map[GenomeID]*Genome{1: repr}
	nextID := GenomeID(2)
	offspring := s.Reproduce(0, genomes, pool, rng, cfg, &nextID)
	assert.Nil(t, offspring)
}

func TestSpecies_ReproduceCopiesEliteWhenSpeciesExceedsThreshold(t *testing.T) {
	cfg := testConfig(2, 1, 10, 10)
	cfg.Species.EliteThreshold = 2
	pool := NewInnovationPool(2, 1)
	rng := newTestRng(5)

	seedGenome := NewSeedGenome(1, 2, 1, pool, rng, 1.0)
	seedGenome.Fitness = 1.0
	s := NewSpecies(1, 0, seedGenome)
	genomes := map[GenomeID]*Genome{1: seedGenome}
	best := genomeWithFitness(2, 1000.0)
	genomes[2] = best
	s.AddMember(2)
	for i := GenomeID(3); i <= 5; i++ {
		genomes[i] = genomeWithFitness(i, 1.0)
		s.AddMember(i)
	}

	nextID := GenomeID(100)
	offspring := s.Reproduce(3, genomes, pool, rng, cfg, &nextID)
	require.NotEmpty(t, offspring)

	foundElite := false
	for _, child := range offspring {
		if child.Fitness == 1000.0 {
			foundElite = true
		}
	}
	assert.True(t, foundElite, "the champion must be copied through unmodified when the species exceeds the elite threshold")
}
