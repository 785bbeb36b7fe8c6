package neat

// InnovationPool assigns globally consistent (InnovationNumber, NeuronId)
// tokens for structural changes and deduplicates across genomes so that two
// genomes which independently introduce "the same" structural change end up
// with aligned gene indices — the essential NEAT idea.
//
// The pool is owned exclusively by the driver (spec.md §5): it is never
// shared across goroutines and requires no locking. All mutating access
// happens inside the driver's Init seeding or an epoch's reproduction step.
type InnovationPool struct {
	nextInnov  InnovationNumber
	nextHidden NeuronId

	genes       map[geneKey]Gene
	innovations map[innovationKey]InnovationRecord
}

// NewInnovationPool creates a pool for a run with the given input/output
// counts. Hidden neuron ids are allocated starting just above the reserved
// bias/input/output range.
func NewInnovationPool(numInputs, numOutputs int) *InnovationPool {
	return &InnovationPool{
		nextInnov:   1,
		nextHidden:  NeuronId(1 + numInputs + numOutputs),
		genes:       make(map[geneKey]Gene),
		innovations: make(map[innovationKey]InnovationRecord),
	}
}

// NextInnovation returns and increments the innovation counter. Strictly
// increasing for the lifetime of the pool.
func (p *InnovationPool) NextInnovation() InnovationNumber {
	n := p.nextInnov
	p.nextInnov++
	return n
}

// NextHiddenNeuron returns and increments the hidden-neuron counter.
// Strictly increasing for the lifetime of the pool.
func (p *InnovationPool) NextHiddenNeuron() NeuronId {
	n := p.nextHidden
	p.nextHidden++
	return n
}

// FindGene returns the canonical gene registered for (from, to), if any.
// The weight field of the returned gene is meaningless — callers re-randomize
// it; only Innov, From and To are authoritative.
func (p *InnovationPool) FindGene(from, to NeuronId) (Gene, bool) {
	g, ok := p.genes[geneKey{From: from, To: to}]
	return g, ok
}

// RegisterGene records the canonical gene for its (from, to) pair. First
// write wins: a second registration for the same pair is a no-op.
func (p *InnovationPool) RegisterGene(g Gene) {
	k := geneKey{From: g.From, To: g.To}
	if _, exists := p.genes[k]; exists {
		return
	}
	p.genes[k] = g
}

// FindInnovation returns the innovation record for (kind, from, to), if any.
func (p *InnovationPool) FindInnovation(kind InnovationKind, from, to NeuronId) (InnovationRecord, bool) {
	rec, ok := p.innovations[innovationKey{Kind: kind, From: from, To: to}]
	return rec, ok
}

// RegisterInnovation records an innovation event. First write wins, keyed
// by (kind, from, to).
func (p *InnovationPool) RegisterInnovation(rec InnovationRecord) {
	k := innovationKey{Kind: rec.Kind, From: rec.From, To: rec.To}
	if _, exists := p.innovations[k]; exists {
		return
	}
	p.innovations[k] = rec
}
