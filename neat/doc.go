// Package neat implements the core of NEAT (NeuroEvolution of Augmenting
// Topologies): a genome representation with mutation/crossover operators, a
// process-wide innovation pool that keeps structural changes aligned across
// genomes, and a speciation-driven generational driver.
//
// Network evaluation is delegated to the nn subpackage; callers supply an
// Evaluator that decodes each genome (nn.Decode) and assigns its Fitness.
//
// Basic usage:
//
//	cfg, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("loading config: %v", err)
//	}
//
//	d := neat.NewDriver(cfg, 42)
//	d.Init()
//
//	for gen := 0; gen < 100; gen++ {
//		winner, err := d.Epoch(myEvaluator)
//		if err != nil {
//			log.Fatalf("epoch %d: %v", gen, err)
//		}
//		if winner != nil {
//			fmt.Println("solution found:", winner.Fitness)
//			break
//		}
//	}
package neat
