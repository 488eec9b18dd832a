package extractor

import "github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"

// dedupe drops records whose (code, name) pair was already seen, keeping the
// first occurrence and the original order.
func dedupe(records []pricelist.ExtractedRecord) []pricelist.ExtractedRecord {
	seen := make(map[[2]string]struct{}, len(records))
	out := make([]pricelist.ExtractedRecord, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
