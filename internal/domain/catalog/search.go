package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/shopspring/decimal"
)

const defaultSuggestLimit = 5

// searchDocument is the indexed form of a product. Code, name and price are
// stored so hits can be turned back into products after a reopen.
type searchDocument struct {
	Code        string `json:"code"`        // exact code, keyword analyzed
	Name        string `json:"name"`        // product name
	Description string `json:"description"` // code and name, for fuzzy search
	Price       string `json:"price"`       // stored only
}

var storedFields = []string{"code", "name", "price"}

// SearchIndex suggests catalog products for supplier rows the matcher could
// not place. Backed by Bleve, in memory unless a path is given.
type SearchIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex
	path    string
}

// NewSearchIndex creates a new search index.
// If path is empty, creates an in-memory index.
// If path is provided, creates/opens a persistent index.
func NewSearchIndex(path string) (*SearchIndex, error) {
	si := &SearchIndex{path: path}

	var index bleve.Index
	var err error

	if path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
		}
		index, err = bleve.New(path, buildIndexMapping())
	} else {
		index, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	si.index = index
	return si, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	storedFieldMapping := bleve.NewTextFieldMapping()
	storedFieldMapping.Analyzer = keyword.Name
	storedFieldMapping.Index = false
	storedFieldMapping.IncludeInAll = false
	storedFieldMapping.IncludeTermVectors = false
	storedFieldMapping.DocValues = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("code", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("price", storedFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// Replace makes the index hold exactly products: new ones are added, changed
// ones re-indexed and products missing from the list are deleted.
func (si *SearchIndex) Replace(products []Product) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	count, err := si.index.DocCount()
	if err != nil {
		return fmt.Errorf("failed to count indexed products: %w", err)
	}

	keep := make(map[string]struct{}, len(products))
	for _, p := range products {
		keep[strconv.FormatInt(p.ID, 10)] = struct{}{}
	}

	batch := si.index.NewBatch()
	if count > 0 {
		req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
		req.Size = int(count)
		res, err := si.index.Search(req)
		if err != nil {
			return fmt.Errorf("failed to list indexed products: %w", err)
		}
		for _, hit := range res.Hits {
			if _, ok := keep[hit.ID]; !ok {
				batch.Delete(hit.ID)
			}
		}
	}
	if err := addProducts(batch, products); err != nil {
		return err
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

func addProducts(batch *bleve.Batch, products []Product) error {
	for _, p := range products {
		doc := searchDocument{
			Code:        p.Code,
			Name:        p.Name,
			Description: fmt.Sprintf("%s %s", p.Code, p.Name),
			Price:       p.SellingPrice.String(),
		}
		if err := batch.Index(strconv.FormatInt(p.ID, 10), doc); err != nil {
			return fmt.Errorf("failed to index product %d: %w", p.ID, err)
		}
	}
	return nil
}

// Suggest returns up to limit products ranked by relevance to query, which
// is usually an extracted product name.
func (si *SearchIndex) Suggest(query string, limit int) ([]Candidate, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	// 1 edit of typo tolerance, as supplier spellings drift
	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("description")
	matchQuery.SetFuzziness(1)

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = limit
	req.Fields = storedFields

	res, err := si.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	candidates := make([]Candidate, 0, len(res.Hits))
	for _, hit := range res.Hits {
		p, err := productFromHit(hit)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{Product: p, Score: hit.Score})
	}
	return candidates, nil
}

func productFromHit(hit *search.DocumentMatch) (Product, error) {
	id, err := strconv.ParseInt(hit.ID, 10, 64)
	if err != nil {
		return Product{}, fmt.Errorf("invalid product id %q in index: %w", hit.ID, err)
	}

	field := func(name string) string {
		s, _ := hit.Fields[name].(string)
		return s
	}

	p := Product{ID: id, Code: field("code"), Name: field("name")}
	if price := field("price"); price != "" {
		if p.SellingPrice, err = decimal.NewFromString(price); err != nil {
			return Product{}, fmt.Errorf("invalid price %q for product %d in index: %w", price, id, err)
		}
	}
	return p, nil
}

// Count returns the number of indexed products.
func (si *SearchIndex) Count() (uint64, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()
	return si.index.DocCount()
}

// Close closes the index.
func (si *SearchIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()
	return si.index.Close()
}
