package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnovationPool_CountersStrictlyIncreasing(t *testing.T) {
	pool := NewInnovationPool(3, 2)

	first := pool.NextInnovation()
	second := pool.NextInnovation()
	assert.Less(t, first, second)

	firstHidden := pool.NextHiddenNeuron()
	secondHidden := pool.NextHiddenNeuron()
	assert.Less(t, firstHidden, secondHidden)
}

func TestInnovationPool_NextHiddenNeuronSeededAboveReservedRange(t *testing.T) {
	pool := NewInnovationPool(3, 2)
	// ids 1..3 are inputs, 4..5 are outputs; hidden neurons start at 6.
	assert.Equal(t, NeuronId(6), pool.NextHiddenNeuron())
}

func TestInnovationPool_RegisterGeneFirstWriteWins(t *testing.T) {
	pool := NewInnovationPool(3, 2)

	g1 := Gene{Innov: 10, From: 1, To: 4, Weight: 0.5, Enabled: true}
	pool.RegisterGene(g1)

	g2 := Gene{Innov: 99, From: 1, To: 4, Weight: -0.9, Enabled: false}
	pool.RegisterGene(g2)

	found, ok := pool.FindGene(1, 4)
	require.True(t, ok)
	assert.Equal(t, InnovationNumber(10), found.Innov)
}

func TestInnovationPool_FindGeneAfterRegisterIsConsistent(t *testing.T) {
	pool := NewInnovationPool(3, 2)
	innov := pool.NextInnovation()
	pool.RegisterGene(Gene{Innov: innov, From: 2, To: 5})

	for i := 0; i < 3; i++ {
		found, ok := pool.FindGene(2, 5)
		require.True(t, ok)
		assert.Equal(t, innov, found.Innov)
	}
}

func TestInnovationPool_RegisterInnovationFirstWriteWins(t *testing.T) {
	pool := NewInnovationPool(3, 2)

	rec1 := InnovationRecord{Kind: KindNewNeuron, From: 1, To: 4, InnovIn: 10, InnovOut: 11, NewNeuronID: 6}
	pool.RegisterInnovation(rec1)

	rec2 := InnovationRecord{Kind: KindNewNeuron, From: 1, To: 4, InnovIn: 50, InnovOut: 51, NewNeuronID: 7}
	pool.RegisterInnovation(rec2)

	found, ok := pool.FindInnovation(KindNewNeuron, 1, 4)
	require.True(t, ok)
	assert.Equal(t, NeuronId(6), found.NewNeuronID)
	assert.Equal(t, InnovationNumber(10), found.InnovIn)
}

func TestInnovationPool_FindInnovationDistinguishesKind(t *testing.T) {
	pool := NewInnovationPool(3, 2)
	pool.RegisterInnovation(InnovationRecord{Kind: KindNewLink, From: 1, To: 4, Innov: 5})

	_, ok := pool.FindInnovation(KindNewNeuron, 1, 4)
	assert.False(t, ok, "a NewLink record must not satisfy a NewNeuron lookup for the same (from,to)")
}

// Innovation dedup: spec.md §8 scenario 2 — two independent add_link
// mutations targeting the same (from,to) pair must share an innovation
// number.
func TestInnovationPool_AddLinkDedupAcrossGenomes(t *testing.T) {
	pool := NewInnovationPool(2, 1)
	rng := newTestRng(1)

	g1 := NewGenome(1, 2, 1)
	g1.addOrReuseLink(pool, 1, 3, rng, 1.0)

	g2 := NewGenome(2, 2, 1)
	g2.addOrReuseLink(pool, 1, 3, rng, 1.0)

	require.Len(t, g1.Genes, 1)
	require.Len(t, g2.Genes, 1)
	assert.Equal(t, g1.Genes[0].Innov, g2.Genes[0].Innov)
}
