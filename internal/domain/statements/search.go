package statements

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/finhelm/statement-api/internal/domain/normalizer"
	"github.com/finhelm/statement-api/internal/domain/transaction"
)

// Document is the searchable projection of a stored transaction.
type Document struct {
	ID          string  `json:"id"`
	Year        string  `json:"year"`
	Month       string  `json:"month"`
	Description string  `json:"description"`
	Vendor      string  `json:"vendor"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

// Result is a search hit with its relevance score.
type Result struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// SearchIndex provides full-text search over stored transactions using Bleve.
// The index lives in memory and tracks the store: whenever a bucket changes,
// its documents are replaced wholesale.
type SearchIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex() (*SearchIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &SearchIndex{index: index}, nil
}

// buildIndexMapping analyzes free text with the simple analyzer and keeps
// identifiers and dates as exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	numericFieldMapping := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("year", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("month", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("vendor", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	docMapping.AddFieldMappingsAt("amount", numericFieldMapping)
	docMapping.AddFieldMappingsAt("date", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// ReplaceBucket swaps the indexed documents for one year/month bucket with
// the given transactions.
func (si *SearchIndex) ReplaceBucket(year, month string, txs []transaction.Transaction) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	yearQuery := bleve.NewTermQuery(year)
	yearQuery.SetField("year")
	monthQuery := bleve.NewTermQuery(month)
	monthQuery.SetField("month")

	searchRequest := bleve.NewSearchRequest(bleve.NewConjunctionQuery(yearQuery, monthQuery))
	searchRequest.Size = 10000

	existing, err := si.index.Search(searchRequest)
	if err != nil {
		return fmt.Errorf("listing indexed transactions: %w", err)
	}

	batch := si.index.NewBatch()
	for _, hit := range existing.Hits {
		batch.Delete(hit.ID)
	}
	for _, tx := range txs {
		doc := documentFrom(year, month, tx)
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("indexing transaction %s: %w", doc.ID, err)
		}
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("applying index batch: %w", err)
	}
	return nil
}

// Search runs a fuzzy match query across all indexed fields.
func (si *SearchIndex) Search(query string, size int) ([]Result, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	if size <= 0 {
		size = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = size
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		doc := Document{ID: hit.ID}
		if year, ok := hit.Fields["year"].(string); ok {
			doc.Year = year
		}
		if month, ok := hit.Fields["month"].(string); ok {
			doc.Month = month
		}
		if description, ok := hit.Fields["description"].(string); ok {
			doc.Description = description
		}
		if vendor, ok := hit.Fields["vendor"].(string); ok {
			doc.Vendor = vendor
		}
		if category, ok := hit.Fields["category"].(string); ok {
			doc.Category = category
		}
		if amount, ok := hit.Fields["amount"].(float64); ok {
			doc.Amount = amount
		}
		if date, ok := hit.Fields["date"].(string); ok {
			doc.Date = date
		}
		results = append(results, Result{Document: doc, Score: hit.Score})
	}
	return results, nil
}

// DocumentCount returns the number of indexed transactions.
func (si *SearchIndex) DocumentCount() (uint64, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return si.index.DocCount()
}

// Close releases the index.
func (si *SearchIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()
	if si.index == nil {
		return nil
	}
	return si.index.Close()
}

func documentFrom(year, month string, tx transaction.Transaction) Document {
	return Document{
		ID:          tx.ID,
		Year:        year,
		Month:       month,
		Description: tx.Description,
		Vendor:      normalizer.Normalize(tx.Description),
		Category:    tx.Category,
		Amount:      tx.Amount.Float64(),
		Date:        tx.Date.String(),
	}
}
