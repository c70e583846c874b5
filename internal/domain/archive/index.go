// Package archive keeps a searchable history of every processed report so
// past months can be answered from the command line instead of digging
// through the inbox.
package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/craig-dws/Email-Reports/internal/domain/extraction"
)

// Document is one processed report in the archive.
type Document struct {
	ID           string `json:"id"`
	BusinessName string `json:"business_name"`
	ClientName   string `json:"client_name"`
	ReportMonth  string `json:"report_month"`
	ReportType   string `json:"report_type"`
	SourceFile   string `json:"source_file"`
	Kpis         string `json:"kpis"`
	Errors       string `json:"errors"`
}

// Result is a search hit with its relevance score.
type Result struct {
	Document Document
	Score    float64
}

// Index is a full-text archive over processed reports, backed by bleve.
type Index struct {
	index   bleve.Index
	indexMu sync.RWMutex
	logger  *slog.Logger
}

// NewIndex opens or creates the archive. An empty path gives an in-memory
// index, used by tests and one-shot runs.
func NewIndex(path string, logger *slog.Logger) (*Index, error) {
	indexMapping := buildIndexMapping()

	var index bleve.Index
	var err error
	if path == "" {
		index, err = bleve.NewMemOnly(indexMapping)
	} else if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
			return nil, fmt.Errorf("create archive directory: %w", mkdirErr)
		}
		index, err = bleve.New(path, indexMapping)
	} else {
		index, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open report archive: %w", err)
	}

	return &Index{index: index, logger: logger}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("business_name", textFieldMapping)
	docMapping.AddFieldMappingsAt("client_name", textFieldMapping)
	docMapping.AddFieldMappingsAt("report_month", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("report_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("source_file", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("kpis", textFieldMapping)
	docMapping.AddFieldMappingsAt("errors", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// AddResult archives one extraction result under the given document id.
func (ix *Index) AddResult(id, clientName string, result *extraction.Result) error {
	ix.indexMu.Lock()
	defer ix.indexMu.Unlock()

	doc := Document{
		ID:           id,
		BusinessName: result.BusinessName,
		ClientName:   clientName,
		ReportMonth:  result.ReportMonth,
		ReportType:   string(result.ReportType),
		SourceFile:   result.SourceFile,
		Kpis:         flattenKpis(result),
		Errors:       strings.Join(result.Errors, "; "),
	}
	if err := ix.index.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("archive report %s: %w", doc.SourceFile, err)
	}

	ix.logger.Debug("report archived",
		slog.String("id", id),
		slog.String("business", doc.BusinessName),
		slog.String("month", doc.ReportMonth),
	)
	return nil
}

// Search runs a fuzzy match query over every text field.
func (ix *Index) Search(query string, limit int) ([]Result, error) {
	ix.indexMu.RLock()
	defer ix.indexMu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := ix.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}
	return convertResults(searchResults), nil
}

// SearchMonth returns every archived report for an exact month label, such
// as "September 2025".
func (ix *Index) SearchMonth(month string, limit int) ([]Result, error) {
	ix.indexMu.RLock()
	defer ix.indexMu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	termQuery := bleve.NewTermQuery(month)
	termQuery.SetField("report_month")

	searchRequest := bleve.NewSearchRequest(termQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := ix.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("archive month search: %w", err)
	}
	return convertResults(searchResults), nil
}

// Count returns the number of archived reports.
func (ix *Index) Count() (uint64, error) {
	ix.indexMu.RLock()
	defer ix.indexMu.RUnlock()
	return ix.index.DocCount()
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	ix.indexMu.Lock()
	defer ix.indexMu.Unlock()
	if ix.index != nil {
		return ix.index.Close()
	}
	return nil
}

func convertResults(searchResults *bleve.SearchResult) []Result {
	results := make([]Result, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		doc := Document{ID: hit.ID}
		if v, ok := hit.Fields["business_name"].(string); ok {
			doc.BusinessName = v
		}
		if v, ok := hit.Fields["client_name"].(string); ok {
			doc.ClientName = v
		}
		if v, ok := hit.Fields["report_month"].(string); ok {
			doc.ReportMonth = v
		}
		if v, ok := hit.Fields["report_type"].(string); ok {
			doc.ReportType = v
		}
		if v, ok := hit.Fields["source_file"].(string); ok {
			doc.SourceFile = v
		}
		if v, ok := hit.Fields["kpis"].(string); ok {
			doc.Kpis = v
		}
		if v, ok := hit.Fields["errors"].(string); ok {
			doc.Errors = v
		}
		results = append(results, Result{Document: doc, Score: hit.Score})
	}
	return results
}

// flattenKpis renders the KPI set as one searchable line.
func flattenKpis(result *extraction.Result) string {
	if result.Kpis == nil {
		return ""
	}
	var parts []string
	for _, field := range result.Kpis.Fields() {
		v, _ := result.Kpis.Get(field)
		if v.Change != "" {
			parts = append(parts, fmt.Sprintf("%s %s (%s)", field, v.Value, v.Change))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s", field, v.Value))
		}
	}
	return strings.Join(parts, "; ")
}
