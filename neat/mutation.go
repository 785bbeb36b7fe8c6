package neat

import "math/rand"

// mutationOp identifies one of the eight structural/weight mutation
// operators, in the order spec.md §4.2's mutation table lists them.
type mutationOp int

const (
	opAddLink mutationOp = iota
	opAddNeuron
	opOneWeight
	opAllWeights
	opResetWeights
	opRemoveGene
	opReenableGene
	opToggleEnable
	numMutationOps
)

// mutationWeights is the ordered set of selection weights for the eight
// operators, indexed by mutationOp.
type mutationWeights [numMutationOps]float64

func (g *Genome) weights(cfg *GenomeConfig) mutationWeights {
	return mutationWeights{
		opAddLink:      cfg.MutationWeightAddLink,
		opAddNeuron:    cfg.MutationWeightAddNeuron,
		opOneWeight:    cfg.MutationWeightOneWeight,
		opAllWeights:   cfg.MutationWeightAllWeights,
		opResetWeights: cfg.MutationWeightResetWeights,
		opRemoveGene:   cfg.MutationWeightRemoveGene,
		opReenableGene: cfg.MutationWeightReenableGene,
		opToggleEnable: cfg.MutationWeightToggleEnable,
	}
}

// pickWeighted samples an index from w proportionally to its weights. A
// non-positive total weight always yields index 0, matching the original's
// behavior of falling through to the first operator rather than panicking.
func pickWeighted(rng *rand.Rand, w []float64) int {
	var total float64
	for _, x := range w {
		total += x
	}
	if total <= 0 {
		return 0
	}
	roll := rng.Float64() * total
	for i, x := range w {
		if roll < x {
			return i
		}
		roll -= x
	}
	return len(w) - 1
}

// MutateRandom clones g and attempts a single randomly chosen structural or
// weight mutation, retrying with a freshly chosen operator up to 3 total
// attempts if the chosen one finds no legal target. The clone is returned
// either way: a mutation operator that fails never partially modifies the
// genome, so a genome with no legal mutation simply comes back unchanged.
// Grounded on NEToolKit's genome::get_random_mutation/random_mutate.
func (g *Genome) MutateRandom(pool *InnovationPool, rng *rand.Rand, cfg *GenomeConfig) *Genome {
	offspring := g.Clone()
	w := offspring.weights(cfg)

	attemptsLeft := 3
	for attemptsLeft > 0 {
		attemptsLeft--
		op := mutationOp(pickWeighted(rng, w[:]))
		if offspring.applyMutation(op, pool, rng, cfg) {
			return offspring
		}
	}
	return offspring
}

// applyMutation dispatches to the concrete operator and reports whether it
// found a legal target and applied.
func (g *Genome) applyMutation(op mutationOp, pool *InnovationPool, rng *rand.Rand, cfg *GenomeConfig) bool {
	switch op {
	case opAddLink:
		return g.mutateAddLink(pool, rng, cfg)
	case opAddNeuron:
		return g.mutateAddNeuron(pool, rng)
	case opOneWeight:
		return g.mutateOneWeight(rng, cfg)
	case opAllWeights:
		return g.mutateAllWeights(rng, cfg)
	case opResetWeights:
		return g.mutateResetWeights(rng, cfg)
	case opRemoveGene:
		return g.mutateRemoveGene(rng)
	case opReenableGene:
		return g.mutateReenableGene(rng)
	case opToggleEnable:
		return g.mutateToggleEnable(rng)
	default:
		return false
	}
}

// mutateAddLink picks a random (from, to) pair not already present as a
// gene, with to never an input or the bias neuron, and adds it — reusing
// the pool's innovation number if some other genome this run already
// claimed the same (from, to) pair.
func (g *Genome) mutateAddLink(pool *InnovationPool, rng *rand.Rand, cfg *GenomeConfig) bool {
	candidatesTo := make([]NeuronId, 0, len(g.knownNeurons))
	for _, id := range g.knownNeurons {
		if !g.IsInputOrBias(id) {
			candidatesTo = append(candidatesTo, id)
		}
	}
	if len(candidatesTo) == 0 {
		return false
	}

	const maxAttempts = 20
	for attempt := 0; attempt < maxAttempts; attempt++ {
		from := g.knownNeurons[rng.Intn(len(g.knownNeurons))]
		to := candidatesTo[rng.Intn(len(candidatesTo))]
		if g.LinkExists(from, to) {
			continue
		}
		g.addOrReuseLink(pool, from, to, rng, cfg.InitialWeightPerturbation)
		return true
	}
	return false
}

// mutateAddNeuron splits an existing enabled gene (from, to) into
// from->newNeuron and newNeuron->to, both carrying the original gene's
// weight, disabling the original. Reuses the pool's innovation numbers and
// neuron id if another genome already split this exact gene this run.
func (g *Genome) mutateAddNeuron(pool *InnovationPool, rng *rand.Rand) bool {
	candidates := make([]int, 0, len(g.Genes))
	for i, gene := range g.Genes {
		if gene.Enabled {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	idx := candidates[rng.Intn(len(candidates))]
	original := g.Genes[idx]
	g.Genes[idx].Enabled = false

	var newNeuron NeuronId
	var innovIn, innovOut InnovationNumber
	if rec, ok := pool.FindInnovation(KindNewNeuron, original.From, original.To); ok {
		newNeuron = rec.NewNeuronID
		innovIn = rec.InnovIn
		innovOut = rec.InnovOut
	} else {
		newNeuron = pool.NextHiddenNeuron()
		innovIn = pool.NextInnovation()
		innovOut = pool.NextInnovation()
		pool.RegisterInnovation(InnovationRecord{
			Kind: KindNewNeuron, From: original.From, To: original.To,
			NewNeuronID: newNeuron, InnovIn: innovIn, InnovOut: innovOut,
		})
	}

	inGene := Gene{Innov: innovIn, From: original.From, To: newNeuron, Weight: original.Weight, Enabled: true}
	outGene := Gene{Innov: innovOut, From: newNeuron, To: original.To, Weight: original.Weight, Enabled: true}
	pool.RegisterGene(inGene)
	pool.RegisterGene(outGene)
	g.addGene(inGene)
	g.addGene(outGene)
	return true
}

// mutateOneWeight perturbs a single randomly chosen gene's weight by a
// uniform offset in [-power, power].
func (g *Genome) mutateOneWeight(rng *rand.Rand, cfg *GenomeConfig) bool {
	if len(g.Genes) == 0 {
		return false
	}
	idx := rng.Intn(len(g.Genes))
	g.Genes[idx].Weight += uniform(rng, cfg.WeightMutationPower)
	return true
}

// mutateAllWeights perturbs every gene's weight by an independent uniform
// offset in [-power, power].
func (g *Genome) mutateAllWeights(rng *rand.Rand, cfg *GenomeConfig) bool {
	if len(g.Genes) == 0 {
		return false
	}
	for i := range g.Genes {
		g.Genes[i].Weight += uniform(rng, cfg.WeightMutationPower)
	}
	return true
}

// mutateResetWeights replaces every gene's weight with a fresh draw from
// [-perturbation, perturbation], as if the genome were freshly seeded. It
// never fails; on a genome with no genes it is a no-op that still succeeds.
func (g *Genome) mutateResetWeights(rng *rand.Rand, cfg *GenomeConfig) bool {
	for i := range g.Genes {
		g.Genes[i].Weight = uniform(rng, cfg.InitialWeightPerturbation)
	}
	return true
}

// mutateRemoveGene deletes a randomly chosen gene outright. Any neuron that
// becomes unreferenced as a result is left in knownNeurons unpruned — see
// SPEC_FULL.md §5 (open semantic question carried from NEToolKit's
// mutate_remove_gene, which has the identical TODO in the original source).
func (g *Genome) mutateRemoveGene(rng *rand.Rand) bool {
	if len(g.Genes) == 0 {
		return false
	}
	idx := rng.Intn(len(g.Genes))
	g.Genes = append(g.Genes[:idx], g.Genes[idx+1:]...)
	return true
}

// mutateReenableGene re-enables a randomly chosen disabled gene.
func (g *Genome) mutateReenableGene(rng *rand.Rand) bool {
	candidates := make([]int, 0)
	for i, gene := range g.Genes {
		if !gene.Enabled {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	g.Genes[candidates[rng.Intn(len(candidates))]].Enabled = true
	return true
}

// mutateToggleEnable flips a randomly chosen gene's enabled flag.
func (g *Genome) mutateToggleEnable(rng *rand.Rand) bool {
	if len(g.Genes) == 0 {
		return false
	}
	idx := rng.Intn(len(g.Genes))
	g.Genes[idx].Enabled = !g.Genes[idx].Enabled
	return true
}
