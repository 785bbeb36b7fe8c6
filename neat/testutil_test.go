package neat

import "math/rand"

// newTestRng returns a deterministically seeded generator for tests that
// need reproducible sampling without caring about the exact sequence.
func newTestRng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// testGenomeConfig returns a GenomeConfig with every mutation/crossover
// weight positive (so pickWeighted never starves an operator) and
// reasonable defaults for the probability/perturbation parameters.
func testGenomeConfig() *GenomeConfig {
	return &GenomeConfig{
		DistanceCoefC1: 1.0,
		DistanceCoefC2: 1.0,
		DistanceCoefC3: 0.4,

		InitialWeightPerturbation: 1.0,
		WeightMutationPower:       0.5,

		PCrossover:       0.75,
		PInheritDisabled: 0.75,
		PReenable:        0.25,

		MutationWeightAddLink:      1,
		MutationWeightAddNeuron:    1,
		MutationWeightOneWeight:    1,
		MutationWeightAllWeights:   1,
		MutationWeightResetWeights: 1,
		MutationWeightRemoveGene:   1,
		MutationWeightReenableGene: 1,
		MutationWeightToggleEnable: 1,

		CrossoverWeightMultipointBest: 1,
		CrossoverWeightMultipointRnd:  1,
		CrossoverWeightMultipointAvg:  1,
	}
}

// testConfig returns a full Config suitable for driver-level tests, wired
// around testGenomeConfig.
func testConfig(numInputs, numOutputs, initialPop, targetPop int) *Config {
	return &Config{
		Neat: NeatConfig{
			NumberOfInputs:        numInputs,
			NumberOfOutputs:       numOutputs,
			InitialPopulationSize: initialPop,
			TargetPopulationSize:  targetPop,
			FitnessThreshold:      3.9,
			NoFitnessTermination:  false,
			BestGenomesLibraryMax: 5,
		},
		Genome: *testGenomeConfig(),
		Species: SpeciesConfig{
			CompatibilityThreshold:        3.0,
			DynamicCompatibilityThreshold: false,
			TargetSpeciesCount:            5,
			CompatibilityThresholdStep:    0.2,
			CompatibilityThresholdMin:     0.5,
			CompatibilityThresholdMax:     6.0,
			EliteThreshold:                2,
			RepresentantPolicy:            "uniform",
			SurvivalThreshold:             0.3,
		},
		Stagnation: StagnationConfig{
			SpeciesStagnationCap: 15,
			SpeciesElitism:       1,
		},
	}
}
