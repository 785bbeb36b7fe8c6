package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the NEAT algorithm,
// loaded from an INI file with one section per struct below.
type Config struct {
	Neat       NeatConfig
	Genome     GenomeConfig
	Species    SpeciesConfig
	Stagnation StagnationConfig
}

// NeatConfig holds parameters for the driver loop itself.
type NeatConfig struct {
	NumberOfInputs         int     `ini:"number_of_inputs"`
	NumberOfOutputs        int     `ini:"number_of_outputs"`
	InitialPopulationSize  int     `ini:"initial_population_size"`
	TargetPopulationSize   int     `ini:"target_population_size"`
	FitnessThreshold       float64 `ini:"fitness_threshold"`
	NoFitnessTermination   bool    `ini:"no_fitness_termination"`
	BestGenomesLibraryMax  int     `ini:"best_genomes_library_max_size"`
	MaxGenerations         int     `ini:"max_generations"`
}

// GenomeConfig holds parameters governing genome mutation and crossover.
type GenomeConfig struct {
	DistanceCoefC1 float64 `ini:"distance_coef_c1"`
	DistanceCoefC2 float64 `ini:"distance_coef_c2"`
	DistanceCoefC3 float64 `ini:"distance_coef_c3"`

	InitialWeightPerturbation float64 `ini:"initial_weight_perturbation"`
	WeightMutationPower       float64 `ini:"weight_mutation_power"`

	PCrossover       float64 `ini:"p_crossover"`
	PInheritDisabled float64 `ini:"p_inherit_disabled"`
	PReenable        float64 `ini:"p_reenable"`

	MutationWeightAddLink      float64 `ini:"mutation_weight_add_link"`
	MutationWeightAddNeuron    float64 `ini:"mutation_weight_add_neuron"`
	MutationWeightOneWeight    float64 `ini:"mutation_weight_one_weight"`
	MutationWeightAllWeights   float64 `ini:"mutation_weight_all_weights"`
	MutationWeightResetWeights float64 `ini:"mutation_weight_reset_weights"`
	MutationWeightRemoveGene   float64 `ini:"mutation_weight_remove_gene"`
	MutationWeightReenableGene float64 `ini:"mutation_weight_reenable_gene"`
	MutationWeightToggleEnable float64 `ini:"mutation_weight_toggle_enable"`

	CrossoverWeightMultipointBest float64 `ini:"crossover_weight_multipoint_best"`
	CrossoverWeightMultipointRnd  float64 `ini:"crossover_weight_multipoint_rnd"`
	CrossoverWeightMultipointAvg  float64 `ini:"crossover_weight_multipoint_avg"`
}

// SpeciesConfig holds parameters governing speciation and reproduction.
type SpeciesConfig struct {
	CompatibilityThreshold        float64 `ini:"compatibility_threshold"`
	DynamicCompatibilityThreshold bool    `ini:"dynamic_compatibility_threshold"`
	TargetSpeciesCount            int     `ini:"target_species_count"`
	CompatibilityThresholdStep    float64 `ini:"compatibility_threshold_step"`
	CompatibilityThresholdMin     float64 `ini:"compatibility_threshold_min"`
	CompatibilityThresholdMax     float64 `ini:"compatibility_threshold_max"`
	EliteThreshold                int     `ini:"elite_threshold"`
	RepresentantPolicy            string  `ini:"representant_policy"` // "uniform" or "keep_champion"
	SurvivalThreshold              float64 `ini:"survival_threshold"`
}

// StagnationConfig holds parameters governing species stagnation culling.
type StagnationConfig struct {
	SpeciesStagnationCap int `ini:"species_stagnation_cap"`
	SpeciesElitism       int `ini:"species_elitism"`
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	src, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	cfg := &Config{}
	if err := src.Section("NEAT").MapTo(&cfg.Neat); err != nil {
		return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
	}
	if err := src.Section("Genome").MapTo(&cfg.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := src.Section("Species").MapTo(&cfg.Species); err != nil {
		return nil, fmt.Errorf("failed to map [Species] section: %w", err)
	}
	if err := src.Section("Stagnation").MapTo(&cfg.Stagnation); err != nil {
		return nil, fmt.Errorf("failed to map [Stagnation] section: %w", err)
	}

	// The ini library occasionally mis-parses bools/floats following an
	// inline comment despite the load options above; re-read the handful of
	// keys known to be sensitive directly from the key, matching the
	// teacher's workaround in its own config.go.
	neatSection := src.Section("NEAT")
	if k, err := neatSection.GetKey("no_fitness_termination"); err == nil {
		cfg.Neat.NoFitnessTermination, _ = k.Bool()
	}

	speciesSection := src.Section("Species")
	if k, err := speciesSection.GetKey("dynamic_compatibility_threshold"); err == nil {
		cfg.Species.DynamicCompatibilityThreshold, _ = k.Bool()
	}
	cfg.Species.RepresentantPolicy = cleanIniString(cfg.Species.RepresentantPolicy)
	if cfg.Species.RepresentantPolicy == "" {
		cfg.Species.RepresentantPolicy = "uniform"
	}

	if cfg.Neat.BestGenomesLibraryMax == 0 {
		cfg.Neat.BestGenomesLibraryMax = 10
	}
	if cfg.Stagnation.SpeciesStagnationCap == 0 {
		cfg.Stagnation.SpeciesStagnationCap = 15
	}
	if !speciesSection.HasKey("survival_threshold") {
		cfg.Species.SurvivalThreshold = 0.2
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Neat.NumberOfInputs <= 0 {
		return fmt.Errorf("config error: number_of_inputs must be positive")
	}
	if c.Neat.NumberOfOutputs <= 0 {
		return fmt.Errorf("config error: number_of_outputs must be positive")
	}
	if c.Neat.InitialPopulationSize <= 0 {
		return fmt.Errorf("config error: initial_population_size must be positive")
	}
	if c.Neat.TargetPopulationSize <= 0 {
		return fmt.Errorf("config error: target_population_size must be positive")
	}
	if c.Genome.DistanceCoefC1 < 0 || c.Genome.DistanceCoefC2 < 0 || c.Genome.DistanceCoefC3 < 0 {
		return fmt.Errorf("config error: distance coefficients cannot be negative")
	}
	if c.Genome.PCrossover < 0 || c.Genome.PCrossover > 1 {
		return fmt.Errorf("config error: p_crossover must be between 0 and 1")
	}
	if c.Genome.PInheritDisabled < 0 || c.Genome.PInheritDisabled > 1 {
		return fmt.Errorf("config error: p_inherit_disabled must be between 0 and 1")
	}
	if c.Genome.PReenable < 0 || c.Genome.PReenable > 1 {
		return fmt.Errorf("config error: p_reenable must be between 0 and 1")
	}
	mutationWeights := []float64{
		c.Genome.MutationWeightAddLink, c.Genome.MutationWeightAddNeuron,
		c.Genome.MutationWeightOneWeight, c.Genome.MutationWeightAllWeights,
		c.Genome.MutationWeightResetWeights, c.Genome.MutationWeightRemoveGene,
		c.Genome.MutationWeightReenableGene, c.Genome.MutationWeightToggleEnable,
	}
	var mutationTotal float64
	for _, w := range mutationWeights {
		if w < 0 {
			return fmt.Errorf("config error: mutation weights cannot be negative")
		}
		mutationTotal += w
	}
	if mutationTotal <= 0 {
		return fmt.Errorf("config error: at least one mutation weight must be positive")
	}
	crossoverWeights := []float64{
		c.Genome.CrossoverWeightMultipointBest, c.Genome.CrossoverWeightMultipointRnd,
		c.Genome.CrossoverWeightMultipointAvg,
	}
	var crossoverTotal float64
	for _, w := range crossoverWeights {
		if w < 0 {
			return fmt.Errorf("config error: crossover weights cannot be negative")
		}
		crossoverTotal += w
	}
	if crossoverTotal <= 0 {
		return fmt.Errorf("config error: at least one crossover weight must be positive")
	}
	if c.Species.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if c.Species.RepresentantPolicy != "uniform" && c.Species.RepresentantPolicy != "keep_champion" {
		return fmt.Errorf("config error: invalid representant_policy '%s', must be 'uniform' or 'keep_champion'", c.Species.RepresentantPolicy)
	}
	if c.Species.SurvivalThreshold <= 0 || c.Species.SurvivalThreshold > 1 {
		return fmt.Errorf("config error: survival_threshold must be between 0 (exclusive) and 1")
	}
	if c.Stagnation.SpeciesStagnationCap <= 0 {
		return fmt.Errorf("config error: species_stagnation_cap must be positive")
	}
	if c.Stagnation.SpeciesElitism < 0 {
		return fmt.Errorf("config error: species_elitism cannot be negative")
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string
// read from INI, in case the comment wasn't stripped at parse time.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
