package neat

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSampleDriver constructs a small, fully populated Driver so the
// checkpoint round trip exercises every field the format carries.
func buildSampleDriver(t *testing.T) *Driver {
	t.Helper()
	cfg := testConfig(3, 2, 5, 5)
	d := NewDriver(cfg, 7)
	d.Init()

	for _, g := range d.Population.Genomes {
		g.Fitness = float64(g.ID)
	}
	d.BestEver = d.Population.Genomes[d.Population.IDsSorted()[0]].Clone()
	d.AgeOfBestEver = 3
	d.Generation = 4
	d.CompatibilityThreshold = 2.5
	d.BestGenomesLibrary = []*Genome{d.BestEver.Clone()}
	return d
}

func TestCheckpoint_RoundTripPreservesPopulationAndSpecies(t *testing.T) {
	d := buildSampleDriver(t)
	path := filepath.Join(t.TempDir(), "run.ckpt")

	require.NoError(t, SaveCheckpoint(path, d))

	cfg := testConfig(3, 2, 5, 5)
	loaded, err := LoadCheckpoint(path, cfg)
	require.NoError(t, err)

	assert.Equal(t, d.Generation, loaded.Generation)
	assert.Equal(t, d.AgeOfBestEver, loaded.AgeOfBestEver)
	assert.InDelta(t, d.CompatibilityThreshold, loaded.CompatibilityThreshold, 1e-9)
	assert.Equal(t, d.Population.Size(), loaded.Population.Size())
	assert.Equal(t, len(d.Species), len(loaded.Species))
	assert.Equal(t, len(d.BestGenomesLibrary), len(loaded.BestGenomesLibrary))

	require.NotNil(t, loaded.BestEver)
	assert.Equal(t, d.BestEver.ID, loaded.BestEver.ID)
	assert.InDelta(t, d.BestEver.Fitness, loaded.BestEver.Fitness, 1e-9)
	assert.Equal(t, len(d.BestEver.Genes), len(loaded.BestEver.Genes))

	for id, g := range d.Population.Genomes {
		restored, ok := loaded.Population.Genomes[id]
		require.True(t, ok, "genome %d must survive the round trip", id)
		assert.InDelta(t, g.Fitness, restored.Fitness, 1e-9)
		require.Equal(t, len(g.Genes), len(restored.Genes))
		for i, gene := range g.Genes {
			assert.Equal(t, gene.Innov, restored.Genes[i].Innov)
			assert.Equal(t, gene.From, restored.Genes[i].From)
			assert.Equal(t, gene.To, restored.Genes[i].To)
			assert.InDelta(t, gene.Weight, restored.Genes[i].Weight, 1e-9)
			assert.Equal(t, gene.Enabled, restored.Genes[i].Enabled)
		}
	}
}

func TestCheckpoint_RoundTripPreservesInnovationPool(t *testing.T) {
	d := buildSampleDriver(t)
	path := filepath.Join(t.TempDir(), "run.ckpt")
	require.NoError(t, SaveCheckpoint(path, d))

	cfg := testConfig(3, 2, 5, 5)
	loaded, err := LoadCheckpoint(path, cfg)
	require.NoError(t, err)

	assert.Equal(t, d.Pool.nextInnov, loaded.Pool.nextInnov)
	assert.Equal(t, d.Pool.nextHidden, loaded.Pool.nextHidden)
	assert.Equal(t, len(d.Pool.genes), len(loaded.Pool.genes))
	assert.Equal(t, len(d.Pool.innovations), len(loaded.Pool.innovations))
	for k, v := range d.Pool.genes {
		restored, ok := loaded.Pool.genes[k]
		require.True(t, ok)
		assert.Equal(t, v.Innov, restored.Innov)
	}
}

func TestCheckpoint_LoadMissingFileFails(t *testing.T) {
	cfg := testConfig(3, 2, 5, 5)
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "missing.ckpt"), cfg)
	assert.Error(t, err)
}

func TestCheckpoint_RoundTripWithNoBestEver(t *testing.T) {
	cfg := testConfig(2, 1, 3, 3)
	d := NewDriver(cfg, 1)
	d.Init()

	path := filepath.Join(t.TempDir(), "run.ckpt")
	require.NoError(t, SaveCheckpoint(path, d))

	loaded, err := LoadCheckpoint(path, cfg)
	require.NoError(t, err)
	assert.Nil(t, loaded.BestEver)
}
