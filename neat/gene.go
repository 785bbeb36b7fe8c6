package neat

import "fmt"

// Gene is an atomic structural edge: a directed, weighted synapse between
// two neurons, stamped with the innovation number of the structural event
// that introduced it. from == to (a self-loop) is permitted. to must never
// be an input or the bias neuron; mutation operators enforce this.
type Gene struct {
	Innov   InnovationNumber
	From    NeuronId
	To      NeuronId
	Weight  float64
	Enabled bool
}

// String renders a gene for debugging/logging.
func (g Gene) String() string {
	state := "enabled"
	if !g.Enabled {
		state = "disabled"
	}
	return fmt.Sprintf("gene(innov=%d, %d->%d, w=%.4f, %s)", g.Innov, g.From, g.To, g.Weight, state)
}

// geneKey is the (from, to) pair used to deduplicate genes in the
// innovation pool, and to detect an already-present link within a genome.
type geneKey struct {
	From NeuronId
	To   NeuronId
}

// InnovationKind discriminates the two structural-event variants. Go has no
// tagged union, so InnovationRecord carries the fields of both and a Kind
// tag, mirroring the teacher's GeneType enum for its own (simpler) gene
// discrimination.
type InnovationKind int

const (
	KindNewLink InnovationKind = iota
	KindNewNeuron
)

// InnovationRecord is the pool's memory of a structural event, so that two
// genomes that independently perform "the same" structural change receive
// identical innovation numbers (and, for a split, the same new neuron id).
type InnovationRecord struct {
	Kind InnovationKind

	// Shared by both kinds: the edge the event concerns.
	From NeuronId
	To   NeuronId

	// NewLink: the single innovation number assigned to the new gene.
	Innov InnovationNumber

	// NewNeuron: splitting (From, To) into From->NewNeuronID and
	// NewNeuronID->To, with these two innovation numbers.
	InnovIn     InnovationNumber
	InnovOut    InnovationNumber
	NewNeuronID NeuronId
}

// innovationKey is the (kind, from, to) lookup key for the innovation
// registry.
type innovationKey struct {
	Kind InnovationKind
	From NeuronId
	To   NeuronId
}
