package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulation_AddAndSize(t *testing.T) {
	p := NewPopulation()
	p.Add(genomeWithFitness(1, 1.0))
	p.Add(genomeWithFitness(2, 2.0))
	assert.Equal(t, 2, p.Size())
}

func TestPopulation_IDsSortedIsDeterministic(t *testing.T) {
	p := NewPopulation()
	p.Add(genomeWithFitness(5, 0))
	p.Add(genomeWithFitness(1, 0))
	p.Add(genomeWithFitness(3, 0))
	assert.Equal(t, []GenomeID{1, 3, 5}, p.IDsSorted())
}

func TestPopulation_ReplaceSwapsInNewGeneration(t *testing.T) {
	p := NewPopulation()
	p.Add(genomeWithFitness(1, 0))
	p.Add(genomeWithFitness(2, 0))

	p.Replace([]*Genome{genomeWithFitness(10, 0), genomeWithFitness(11, 0)})
	require.Equal(t, 2, p.Size())
	_, hasOld := p.Genomes[1]
	assert.False(t, hasOld)
	_, hasNew := p.Genomes[10]
	assert.True(t, hasNew)
}
