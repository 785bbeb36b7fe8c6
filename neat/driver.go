package neat

import (
	"fmt"
	"math"
	"math/rand"
)

// Evaluator is implemented by callers to score a generation of genomes.
// Evaluate must set each genome's Fitness field; it is the only extension
// point the core exposes (spec.md §6).
type Evaluator interface {
	Evaluate(genomes map[GenomeID]*Genome) error
}

// Driver owns every piece of run state — the innovation pool, the
// population, the species list and the single random source — and drives
// the generational loop. It is not safe for concurrent use: spec.md §5
// requires a single-threaded, synchronous owner with no internal locking.
//
// Grounded on NEToolKit's base_neat (init/epoch/find_appropriate_species_for)
// for the step ordering, and on the teacher's population.go for the
// Go-shaped entry points and progress-logging texture.
type Driver struct {
	Config *Config
	Pool   *InnovationPool
	Rng    *rand.Rand

	Population *Population
	Species    []*Species

	nextSpeciesID SpeciesID
	Generation    int

	// BestEver is this run's best genome across every generation so far,
	// an owned value replaced by reassignment — not the raw pointer with
	// manual new/delete the original C++ driver used (spec.md §9).
	BestEver      *Genome
	AgeOfBestEver int

	// BestGenomesLibrary is a bounded, deduplicated collection of the best
	// distinct genomes seen, per spec.md §4.4 step 3.
	BestGenomesLibrary []*Genome

	// CompatibilityThreshold is mutable driver state when
	// dynamic_compatibility_threshold is enabled, else fixed at
	// Config.Species.CompatibilityThreshold for the run.
	CompatibilityThreshold float64
}

// NewDriver initializes a driver with an empty population: seed the
// population via Init before running Epoch.
func NewDriver(cfg *Config, seed int64) *Driver {
	return &Driver{
		Config:                 cfg,
		Pool:                   NewInnovationPool(cfg.Neat.NumberOfInputs, cfg.Neat.NumberOfOutputs),
		Rng:                    rand.New(rand.NewSource(seed)),
		Population:             NewPopulation(),
		nextSpeciesID:          1,
		BestEver:               nil,
		CompatibilityThreshold: cfg.Species.CompatibilityThreshold,
	}
}

// Init seeds the population with InitialPopulationSize copies of a fully
// connected bias/input->output genome (each independently mutated once, so
// the starting population isn't a single clone) and speciates them against
// one initial species represented by the first genome; a genome incompatible
// with it starts a new species. Grounded on NEToolKit's base_neat::init.
func (d *Driver) Init() {
	cfg := d.Config
	var firstGenome *Genome
	for i := 0; i < cfg.Neat.InitialPopulationSize; i++ {
		id := d.Population.NextGenomeID
		d.Population.NextGenomeID++

		g := NewSeedGenome(id, cfg.Neat.NumberOfInputs, cfg.Neat.NumberOfOutputs, d.Pool, d.Rng, cfg.Genome.InitialWeightPerturbation)
		g = g.MutateRandom(d.Pool, d.Rng, &cfg.Genome)
		g.ID = id
		d.Population.Add(g)
		if firstGenome == nil {
			firstGenome = g
		}
	}

	species := NewSpecies(d.nextSpeciesID, d.Generation, firstGenome)
	d.nextSpeciesID++
	d.Species = SpeciateFirstMatch(
		[]*Species{species},
		d.Population.IDsSorted(),
		d.Population.Genomes,
		d.Generation,
		cfg.Genome.DistanceCoefC1, cfg.Genome.DistanceCoefC2, cfg.Genome.DistanceCoefC3,
		d.CompatibilityThreshold,
		&d.nextSpeciesID,
	)
}

// Epoch runs a single generation: evaluate, track the best genome ever
// seen, cull stagnant species, compute and fill offspring quotas, then
// re-speciate the new generation. Returns the winning genome (non-nil) the
// moment the configured fitness threshold is met, unless
// no_fitness_termination is set.
//
// Step order grounded on NEToolKit's base_neat::epoch.
func (d *Driver) Epoch(evaluator Evaluator) (*Genome, error) {
	d.Generation++
	cfg := d.Config

	if err := evaluator.Evaluate(d.Population.Genomes); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", d.Generation, err)
	}

	fitnesses := make([]float64, 0, d.Population.Size())
	for _, g := range d.Population.Genomes {
		fitnesses = append(fitnesses, g.Fitness)
	}
	fmt.Printf("Generation %d: mean fitness %.4f, stdev %.4f, %d species\n",
		d.Generation, Mean(fitnesses), Stdev(fitnesses), len(d.Species))

	current := d.currentBestGenome()
	if current != nil {
		if d.BestEver == nil || current.Fitness > d.BestEver.Fitness {
			d.BestEver = current.Clone()
			d.AgeOfBestEver = 0
			fmt.Printf("Info: new best genome ever, generation %d, fitness %.4f\n", d.Generation, d.BestEver.Fitness)
		} else {
			d.AgeOfBestEver++
		}
		d.updateBestGenomesLibrary(current)
	}

	if !cfg.Neat.NoFitnessTermination && d.BestEver != nil && d.BestEver.Fitness >= cfg.Neat.FitnessThreshold {
		return d.BestEver, nil
	}

	for _, s := range d.Species {
		s.AdjustFitnesses(d.Population.Genomes)
	}
	d.Species = CullStagnant(d.Species, cfg.Stagnation.SpeciesStagnationCap, cfg.Stagnation.SpeciesElitism)
	if len(d.Species) == 0 {
		return nil, fmt.Errorf("population extinct in generation %d: every species culled", d.Generation)
	}

	quotas := ComputeOffspringQuotas(d.Species, cfg.Neat.TargetPopulationSize)

	nextGenomeID := d.Population.NextGenomeID
	offspring := make([]*Genome, 0, cfg.Neat.TargetPopulationSize)
	for _, s := range d.Species {
		offspring = append(offspring, s.Reproduce(quotas[s.ID], d.Population.Genomes, d.Pool, d.Rng, cfg, &nextGenomeID)...)
	}
	d.Population.NextGenomeID = nextGenomeID
	d.Population.Replace(offspring)

	d.Species = SpeciateFirstMatch(
		d.Species,
		d.Population.IDsSorted(),
		d.Population.Genomes,
		d.Generation,
		cfg.Genome.DistanceCoefC1, cfg.Genome.DistanceCoefC2, cfg.Genome.DistanceCoefC3,
		d.CompatibilityThreshold,
		&d.nextSpeciesID,
	)

	for _, s := range d.Species {
		s.PickRepresentant(d.Population.Genomes, d.Rng, cfg.Species.RepresentantPolicy)
	}

	if cfg.Species.DynamicCompatibilityThreshold {
		d.adjustCompatibilityThreshold()
	}

	return nil, nil
}

// currentBestGenome returns the fittest genome in the current population,
// or nil for an empty population. Uses -Inf as the initial floor, fixing
// the numeric_limits<double>::min() pitfall spec.md §9 calls out in the
// original.
func (d *Driver) currentBestGenome() *Genome {
	var best *Genome
	maxFitness := math.Inf(-1)
	for _, id := range d.Population.IDsSorted() {
		g := d.Population.Genomes[id]
		if g.Fitness > maxFitness {
			maxFitness = g.Fitness
			best = g
		}
	}
	return best
}

// updateBestGenomesLibrary inserts candidate into the bounded library if it
// is not structurally identical to an entry already held. When the library
// is full, the weakest entry is replaced only if candidate is fitter.
func (d *Driver) updateBestGenomesLibrary(candidate *Genome) {
	for _, g := range d.BestGenomesLibrary {
		if g.StructurallyEqual(candidate) {
			return
		}
	}

	maxSize := d.Config.Neat.BestGenomesLibraryMax
	if maxSize <= 0 {
		maxSize = 10
	}

	entry := candidate.Clone()
	if len(d.BestGenomesLibrary) < maxSize {
		d.BestGenomesLibrary = append(d.BestGenomesLibrary, entry)
		return
	}

	worstIdx := 0
	for i, g := range d.BestGenomesLibrary {
		if g.Fitness < d.BestGenomesLibrary[worstIdx].Fitness {
			worstIdx = i
		}
	}
	if entry.Fitness > d.BestGenomesLibrary[worstIdx].Fitness {
		d.BestGenomesLibrary[worstIdx] = entry
	}
}

// adjustCompatibilityThreshold nudges CompatibilityThreshold toward
// producing Config.Species.TargetSpeciesCount species, the way
// wizardbeard-protogonos's AdaptiveSpeciation does: step the threshold down
// when there are too few species (so fewer genomes fit an existing species),
// up when there are too many, clamped to the configured min/max.
func (d *Driver) adjustCompatibilityThreshold() {
	cfg := d.Config.Species
	count := len(d.Species)
	switch {
	case count < cfg.TargetSpeciesCount:
		d.CompatibilityThreshold -= cfg.CompatibilityThresholdStep
	case count > cfg.TargetSpeciesCount:
		d.CompatibilityThreshold += cfg.CompatibilityThresholdStep
	}
	if cfg.CompatibilityThresholdMin > 0 && d.CompatibilityThreshold < cfg.CompatibilityThresholdMin {
		d.CompatibilityThreshold = cfg.CompatibilityThresholdMin
	}
	if cfg.CompatibilityThresholdMax > 0 && d.CompatibilityThreshold > cfg.CompatibilityThresholdMax {
		d.CompatibilityThreshold = cfg.CompatibilityThresholdMax
	}
}
