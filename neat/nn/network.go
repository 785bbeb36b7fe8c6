// Package nn decodes a neat.Genome into a runnable phenotype. It is kept
// separate from the neat package so the core genome/species/driver loop has
// no dependency on how (or whether) a genome ever gets executed.
package nn

import (
	"fmt"
	"math"

	"github.com/corvid-labs/goneat/neat"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// steepenedSigmoidK is the steepening constant NEToolKit's
// network::steepened_sigmoid applies; it is the single, non-evolvable
// activation function every decoded neuron uses (spec.md §4.2 — the genome
// carries no per-node activation gene).
const steepenedSigmoidK = 4.9

func steepenedSigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepenedSigmoidK*x))
}

// link is one decoded incoming connection to a neuron.
type link struct {
	from   neat.NeuronId
	weight float64
}

// neuron is a decoded node: its incoming links, ready for activation.
type neuron struct {
	id       neat.NeuronId
	incoming []link
}

// Network is the default phenotype executor. Feed-forward genomes (no
// cycle among enabled genes) are activated with a single topological pass;
// genomes with recurrent wiring fall back to a bounded number of
// synchronous relaxation passes, since the core's gene model never forbids
// a to-neuron that can reach back to one of its own inputs.
//
// Grounded on NEToolKit's genome::generate_network for the decode step and
// on other_examples/NaniteFactory-naneat for using gonum's graph/topo
// package to do the cycle check instead of a hand-rolled Kahn's algorithm.
type Network struct {
	inputCount  int
	outputCount int
	neurons     map[neat.NeuronId]*neuron

	// evalOrder is the topological activation order (hidden + output
	// neurons only, bias/inputs excluded) when the phenotype is a DAG.
	evalOrder []neat.NeuronId
	recurrent bool

	// recurrentIterations bounds the relaxation loop used for recurrent
	// phenotypes; it is not part of the genome and has a fixed default,
	// matching NEToolKit's treatment of recurrent activation as a fixed
	// number of network "ticks" rather than a convergence criterion.
	recurrentIterations int
}

const defaultRecurrentIterations = 8

// Decode builds a Network from a genome's enabled genes. Disabled genes are
// skipped entirely, matching NEToolKit's generate_network. An enabled
// self-loop gene makes the phenotype recurrent.
func Decode(g *neat.Genome) (*Network, error) {
	dg := simple.NewDirectedGraph()
	for _, id := range g.KnownNeurons() {
		dg.AddNode(simple.Node(id))
	}
	hasSelfLoop := false
	for _, gene := range g.Genes {
		if !gene.Enabled {
			continue
		}
		if gene.From == gene.To {
			// gonum's simple graph rejects self edges; a self-loop is a cycle.
			hasSelfLoop = true
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(gene.From), simple.Node(gene.To)))
	}

	net := &Network{
		inputCount:  g.InputCount,
		outputCount: g.OutputCount,
		neurons:     make(map[neat.NeuronId]*neuron, len(g.KnownNeurons())),
	}
	for _, id := range g.KnownNeurons() {
		net.neurons[id] = &neuron{id: id}
	}
	for _, gene := range g.Genes {
		if !gene.Enabled {
			continue
		}
		n := net.neurons[gene.To]
		n.incoming = append(n.incoming, link{from: gene.From, weight: gene.Weight})
	}

	if hasSelfLoop {
		net.recurrent = true
		net.recurrentIterations = defaultRecurrentIterations
		return net, nil
	}

	order, err := topo.Sort(dg)
	if err != nil {
		if _, ok := err.(topo.Unorderable); !ok {
			return nil, fmt.Errorf("failed to analyze network topology: %w", err)
		}
		net.recurrent = true
		net.recurrentIterations = defaultRecurrentIterations
		return net, nil
	}

	net.evalOrder = make([]neat.NeuronId, 0, len(order))
	for _, node := range order {
		id := neat.NeuronId(node.ID())
		if id == neat.BiasNeuronID || net.isInput(id) {
			continue
		}
		net.evalOrder = append(net.evalOrder, id)
	}
	return net, nil
}

func (n *Network) isInput(id neat.NeuronId) bool {
	return id >= 1 && int(id) <= n.inputCount
}

// IsRecurrent reports whether the decoded phenotype contains a cycle.
func (n *Network) IsRecurrent() bool {
	return n.recurrent
}

// Activate runs the network forward on inputs (which must have exactly
// InputCount entries) and returns OutputCount values.
func (n *Network) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != n.inputCount {
		return nil, fmt.Errorf("nn: expected %d inputs, got %d", n.inputCount, len(inputs))
	}

	values := make(map[neat.NeuronId]float64, len(n.neurons))
	values[neat.BiasNeuronID] = 1.0
	for i, v := range inputs {
		values[neat.NeuronId(i+1)] = v
	}

	if n.recurrent {
		n.activateRecurrent(values)
	} else {
		n.activateFeedForward(values)
	}

	outputs := make([]float64, n.outputCount)
	for i := 0; i < n.outputCount; i++ {
		outputs[i] = values[neat.NeuronId(1+n.inputCount+i)]
	}
	return outputs, nil
}

func (n *Network) activateFeedForward(values map[neat.NeuronId]float64) {
	for _, id := range n.evalOrder {
		values[id] = steepenedSigmoid(n.sumIncoming(n.neurons[id], values))
	}
}

// activateRecurrent updates every non-input neuron synchronously for a
// fixed number of iterations, reading the previous iteration's values for
// links that close a cycle. This converges for well-behaved recurrent
// phenotypes but, unlike a feed-forward pass, is not guaranteed exact for
// an arbitrary graph within the iteration bound — an accepted limitation,
// since spec.md's gene model does not exclude recurrence and does not
// prescribe its activation semantics.
func (n *Network) activateRecurrent(values map[neat.NeuronId]float64) {
	next := make(map[neat.NeuronId]float64, len(values))
	for id, v := range values {
		next[id] = v
	}
	for iter := 0; iter < n.recurrentIterations; iter++ {
		for id, neuron := range n.neurons {
			if id == neat.BiasNeuronID || n.isInput(id) {
				continue
			}
			next[id] = steepenedSigmoid(n.sumIncoming(neuron, values))
		}
		for id, v := range next {
			values[id] = v
		}
	}
}

func (n *Network) sumIncoming(neuron *neuron, values map[neat.NeuronId]float64) float64 {
	var sum float64
	for _, l := range neuron.incoming {
		sum += values[l.from] * l.weight
	}
	return sum
}

// Builder is the minimal interface a genome decoder needs, kept for callers
// who want to assemble a phenotype into their own graph representation
// rather than the default Network (e.g. for visualization or export).
type Builder interface {
	AddNeuron(id neat.NeuronId)
	AddLink(from, to neat.NeuronId, weight float64)
}

// Build walks every known neuron and enabled gene of g into b, independent
// of whether the result is ever activated through this package's Network.
func Build(g *neat.Genome, b Builder) {
	for _, id := range g.KnownNeurons() {
		b.AddNeuron(id)
	}
	for _, gene := range g.Genes {
		if gene.Enabled {
			b.AddLink(gene.From, gene.To, gene.Weight)
		}
	}
}
