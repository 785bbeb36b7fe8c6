package neat

import "sort"

// Population holds the current generation's genomes, keyed by id so
// species membership and the evaluator can address them directly.
type Population struct {
	Genomes      map[GenomeID]*Genome
	NextGenomeID GenomeID
}

// NewPopulation creates an empty population.
func NewPopulation() *Population {
	return &Population{Genomes: make(map[GenomeID]*Genome)}
}

// Add inserts a genome, keyed by its own ID.
func (p *Population) Add(g *Genome) {
	p.Genomes[g.ID] = g
}

// Size returns the number of genomes currently in the population.
func (p *Population) Size() int {
	return len(p.Genomes)
}

// IDsSorted returns every genome id in ascending order, giving the driver a
// deterministic iteration order for speciation and reporting.
func (p *Population) IDsSorted() []GenomeID {
	ids := make([]GenomeID, 0, len(p.Genomes))
	for id := range p.Genomes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Replace swaps in a freshly reproduced generation of genomes.
func (p *Population) Replace(genomes []*Genome) {
	p.Genomes = make(map[GenomeID]*Genome, len(genomes))
	for _, g := range genomes {
		p.Genomes[g.ID] = g
	}
}
