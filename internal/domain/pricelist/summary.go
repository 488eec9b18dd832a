package pricelist

// Summary counts match outcomes for a run.
type Summary struct {
	Total   int `json:"total"`
	Matched int `json:"matched"`
	NoMatch int `json:"no_match"`
}

// Summarize tallies results by status.
func Summarize(results []MatchResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.IsMatched() {
			s.Matched++
		} else {
			s.NoMatch++
		}
	}
	return s
}
