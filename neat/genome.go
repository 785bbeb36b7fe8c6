package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Genome is a structural encoding of a neural network: an ordered gene list
// together with the set of neuron ids it is known to reference. The gene
// list is always sorted by innovation number and contains no duplicate
// innovation numbers (Distance and Crossover both rely on the merge-order
// walk this gives them).
//
// A Genome owns no mutable state beyond its genes, fitness and known-neuron
// set; fitness is assigned externally by the evaluator after decoding and
// running the phenotype (see the nn package).
type Genome struct {
	ID          GenomeID
	InputCount  int
	OutputCount int
	Genes       []Gene
	Fitness     float64

	// knownNeurons is a superset of {bias} ∪ inputs ∪ outputs ∪ gene
	// endpoints, kept in discovery order: bias, inputs, outputs, then
	// whatever hidden neurons have been introduced. Ordering matters only
	// for reproducibility of add_link's source-neuron sampling.
	knownNeurons []NeuronId
	knownSet     map[NeuronId]bool
}

// NewGenome creates an empty genome with the reserved bias, input and
// output neurons already known, and no genes. Callers typically follow this
// with seeding (see NewSeedGenome) or leave it empty for testing.
func NewGenome(id GenomeID, numInputs, numOutputs int) *Genome {
	g := &Genome{
		ID:          id,
		InputCount:  numInputs,
		OutputCount: numOutputs,
		knownSet:    make(map[NeuronId]bool, numInputs+numOutputs+1),
	}
	g.addKnownNeuron(BiasNeuronID)
	for i := 0; i < numInputs; i++ {
		g.addKnownNeuron(NeuronId(i + 1))
	}
	for i := 0; i < numOutputs; i++ {
		g.addKnownNeuron(NeuronId(1 + numInputs + i))
	}
	return g
}

// NewSeedGenome builds the driver's initial genome: bias->output and
// input->output links for every output (full initial connectivity), as
// required by spec.md §4.4 `init`. Every link is a fresh (or pool-shared,
// should another seed genome in the same run have already claimed it)
// innovation.
func NewSeedGenome(id GenomeID, numInputs, numOutputs int, pool *InnovationPool, rng *rand.Rand, initialPerturbation float64) *Genome {
	g := NewGenome(id, numInputs, numOutputs)
	for i := 0; i < numOutputs; i++ {
		to := NeuronId(1 + numInputs + i)
		g.addOrReuseLink(pool, BiasNeuronID, to, rng, initialPerturbation)
		for j := 0; j < numInputs; j++ {
			g.addOrReuseLink(pool, NeuronId(j+1), to, rng, initialPerturbation)
		}
	}
	return g
}

// addOrReuseLink is the shared add_link body used by both seeding and the
// add_link mutation operator: consult the pool, reuse its innovation number
// if this (from,to) pair has already been claimed this run, else allocate a
// fresh one and register it.
func (g *Genome) addOrReuseLink(pool *InnovationPool, from, to NeuronId, rng *rand.Rand, perturbation float64) {
	weight := uniform(rng, perturbation)
	if existing, ok := pool.FindGene(from, to); ok {
		g.addGene(Gene{Innov: existing.Innov, From: from, To: to, Weight: weight, Enabled: true})
		return
	}
	innov := pool.NextInnovation()
	newGene := Gene{Innov: innov, From: from, To: to, Weight: weight, Enabled: true}
	pool.RegisterGene(newGene)
	pool.RegisterInnovation(InnovationRecord{Kind: KindNewLink, From: from, To: to, Innov: innov})
	g.addGene(newGene)
}

// uniform draws a value in [-bound, bound).
func uniform(rng *rand.Rand, bound float64) float64 {
	if bound == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * bound
}

// Clone returns a deep copy of the genome, suitable for mutation without
// disturbing the original (e.g. a parent used in reproduction).
func (g *Genome) Clone() *Genome {
	clone := &Genome{
		ID:          g.ID,
		InputCount:  g.InputCount,
		OutputCount: g.OutputCount,
		Fitness:     g.Fitness,
		Genes:       make([]Gene, len(g.Genes)),
		knownSet:    make(map[NeuronId]bool, len(g.knownSet)),
	}
	copy(clone.Genes, g.Genes)
	clone.knownNeurons = append(clone.knownNeurons, g.knownNeurons...)
	for k, v := range g.knownSet {
		clone.knownSet[k] = v
	}
	return clone
}

// KnownNeurons returns the ordered set of neuron ids this genome references,
// including bias/inputs/outputs even when not wired into any gene.
func (g *Genome) KnownNeurons() []NeuronId {
	return g.knownNeurons
}

// HasNeuron reports whether id is in the known-neuron set.
func (g *Genome) HasNeuron(id NeuronId) bool {
	return g.knownSet[id]
}

func (g *Genome) addKnownNeuron(id NeuronId) {
	if g.knownSet == nil {
		g.knownSet = make(map[NeuronId]bool)
	}
	if g.knownSet[id] {
		return
	}
	g.knownSet[id] = true
	g.knownNeurons = append(g.knownNeurons, id)
}

// addGene appends a gene, registers its endpoints as known neurons, and
// restores sorted-by-innovation order. Reused pool innovations can be lower
// than the genome's current maximum innovation, so a full resort (rather
// than a bare append) is required to preserve the invariant Distance and
// Crossover depend on.
func (g *Genome) addGene(newGene Gene) {
	g.addKnownNeuron(newGene.From)
	g.addKnownNeuron(newGene.To)
	g.Genes = append(g.Genes, newGene)
	sort.Slice(g.Genes, func(i, j int) bool { return g.Genes[i].Innov < g.Genes[j].Innov })
}

// LinkExists reports whether a gene with this exact (from, to) pair is
// already present in the genome, enabled or not.
func (g *Genome) LinkExists(from, to NeuronId) bool {
	for _, gene := range g.Genes {
		if gene.From == from && gene.To == to {
			return true
		}
	}
	return false
}

// IsInputOrBias reports whether id is an input neuron or the bias neuron —
// neither may be a mutation's destination.
func (g *Genome) IsInputOrBias(id NeuronId) bool {
	return id == BiasNeuronID || (id >= 1 && int(id) <= g.InputCount)
}

// Distance computes the NEAT compatibility distance between g and other, by
// walking both gene lists (sorted by innovation number) in merge order.
// Matching genes contribute their weight difference; genes whose innovation
// falls within the overlap of both lists but is absent from one are
// disjoint; genes beyond the other genome's maximum innovation are excess.
// Per spec.md §4.2, genomes with at most 4 genes are never discriminated
// (distance defined as 0).
func (g *Genome) Distance(other *Genome, c1, c2, c3 float64) float64 {
	n := len(g.Genes)
	if len(other.Genes) > n {
		n = len(other.Genes)
	}
	if n <= 4 {
		return 0
	}

	var disjoint, excess, matching int
	var weightDiffSum float64

	i, j := 0, 0
	for i < len(g.Genes) && j < len(other.Genes) {
		a, b := g.Genes[i], other.Genes[j]
		switch {
		case a.Innov == b.Innov:
			matching++
			weightDiffSum += math.Abs(a.Weight - b.Weight)
			i++
			j++
		case a.Innov < b.Innov:
			disjoint++
			i++
		default:
			disjoint++
			j++
		}
	}
	excess += (len(g.Genes) - i) + (len(other.Genes) - j)

	var avgWeightDiff float64
	if matching > 0 {
		avgWeightDiff = weightDiffSum / float64(matching)
	}

	fn := float64(n)
	return c1*float64(excess)/fn + c2*float64(disjoint)/fn + c3*avgWeightDiff
}

// IsCompatible reports whether g and other fall within threshold of each
// other under the standard NEAT distance coefficients.
func (g *Genome) IsCompatible(other *Genome, c1, c2, c3, threshold float64) bool {
	return g.Distance(other, c1, c2, c3) < threshold
}

// StructurallyEqual reports whether two genomes encode the same topology
// and weights — used by the driver's best-genomes library to avoid storing
// duplicate champions (spec.md §4.4 step 3).
func (g *Genome) StructurallyEqual(other *Genome) bool {
	if len(g.Genes) != len(other.Genes) {
		return false
	}
	for i, a := range g.Genes {
		b := other.Genes[i]
		if a.Innov != b.Innov || a.From != b.From || a.To != b.To || a.Enabled != b.Enabled || a.Weight != b.Weight {
			return false
		}
	}
	return true
}
