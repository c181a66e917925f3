package domain

// IndividualIDColumn is the header of the id column in population files.
const IndividualIDColumn = "IndividualId"

// Population is a table of individuals. Rows[i] holds the raw cell text of
// individual IDs[i], aligned with Headers (which excludes the id column).
type Population struct {
	Headers []string   `json:"headers"`
	IDs     []string   `json:"ids"`
	Rows    [][]string `json:"rows"`
}

// Count returns the number of individuals
func (p *Population) Count() int { return len(p.IDs) }

// Slice returns the individuals in [from, to)
func (p *Population) Slice(from, to int) *Population {
	return &Population{
		Headers: p.Headers,
		IDs:     p.IDs[from:to],
		Rows:    p.Rows[from:to],
	}
}

// Records returns the population as a header line followed by one record per individual
func (p *Population) Records() [][]string {
	records := make([][]string, 0, len(p.IDs)+1)
	records = append(records, append([]string{IndividualIDColumn}, p.Headers...))
	for i, id := range p.IDs {
		records = append(records, append([]string{id}, p.Rows[i]...))
	}
	return records
}
