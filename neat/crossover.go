package neat

import "math/rand"

// crossoverOp identifies one of the three multipoint crossover variants, in
// the order spec.md §4.2's crossover table lists them.
type crossoverOp int

const (
	opMultipointBest crossoverOp = iota
	opMultipointRnd
	opMultipointAvg
	numCrossoverOps
)

// Crossover combines g and other into a child genome, picking one of the
// three multipoint variants by the configured weights. The fitter parent
// (whichever of g and other has the higher Fitness, in either argument
// order) contributes its disjoint and excess genes; on a fitness tie both
// parents contribute theirs. Matching genes are inherited
// per-variant (fitter parent's allele, a coin flip, or the average).
// Grounded on NEToolKit's genome::random_crossover /
// crossover_multipoint_best/rnd/avg.
func (g *Genome) Crossover(other *Genome, childID GenomeID, rng *rand.Rand, cfg *GenomeConfig) *Genome {
	weights := []float64{
		cfg.CrossoverWeightMultipointBest,
		cfg.CrossoverWeightMultipointRnd,
		cfg.CrossoverWeightMultipointAvg,
	}
	op := crossoverOp(pickWeighted(rng, weights))

	fitter, lessFit, tie := g, other, g.Fitness == other.Fitness
	if other.Fitness > g.Fitness {
		fitter, lessFit = other, g
	}

	child := NewGenome(childID, g.InputCount, g.OutputCount)

	i, j := 0, 0
	for i < len(fitter.Genes) || j < len(lessFit.Genes) {
		switch {
		case i < len(fitter.Genes) && j < len(lessFit.Genes) && fitter.Genes[i].Innov == lessFit.Genes[j].Innov:
			a, b := fitter.Genes[i], lessFit.Genes[j]
			child.inheritMatching(a, b, op, rng, cfg)
			i++
			j++
		case j >= len(lessFit.Genes) || (i < len(fitter.Genes) && fitter.Genes[i].Innov < lessFit.Genes[j].Innov):
			// Disjoint/excess from fitter.
			child.inheritSolo(fitter.Genes[i], rng, cfg)
			i++
		default:
			// Disjoint/excess from the other parent: inherited only on a
			// fitness tie, per NEToolKit's helper_crossover_multipoint.
			if tie {
				child.inheritSolo(lessFit.Genes[j], rng, cfg)
			}
			j++
		}
	}
	return child
}

// inheritMatching resolves a homologous gene pair per the chosen variant,
// then resolves its enable flag via resolveInheritedEnabled.
func (g *Genome) inheritMatching(a, b Gene, op crossoverOp, rng *rand.Rand, cfg *GenomeConfig) {
	inherited := a
	switch op {
	case opMultipointBest:
		// a is already the fitter parent's allele.
	case opMultipointRnd:
		if rng.Float64() < 0.5 {
			inherited = b
		}
	case opMultipointAvg:
		inherited.Weight = (a.Weight + b.Weight) / 2
	}

	inherited.Enabled = resolveInheritedEnabled(!a.Enabled || !b.Enabled, rng, cfg)
	g.addGene(inherited)
}

// inheritSolo copies a disjoint/excess gene from one parent, resolving its
// enable flag via resolveInheritedEnabled.
func (g *Genome) inheritSolo(gene Gene, rng *rand.Rand, cfg *GenomeConfig) {
	inherited := gene
	inherited.Enabled = resolveInheritedEnabled(!gene.Enabled, rng, cfg)
	g.addGene(inherited)
}

// resolveInheritedEnabled implements spec.md §4.2's two-step inheritance
// rule: a gene disabled in either contributing parent is disabled with
// probability p_inherit_disabled (else enabled); a gene that comes out
// disabled is then flipped back to enabled with probability p_reenable.
// A gene enabled in both contributing parents is simply enabled.
func resolveInheritedEnabled(disabledInEitherParent bool, rng *rand.Rand, cfg *GenomeConfig) bool {
	if !disabledInEitherParent {
		return true
	}
	enabled := rng.Float64() >= cfg.PInheritDisabled
	if !enabled && rng.Float64() < cfg.PReenable {
		enabled = true
	}
	return enabled
}
