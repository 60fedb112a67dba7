package tasks

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// taskDocument is the indexed form of a task.
type taskDocument struct {
	Title   string `json:"title"`
	Notes   string `json:"notes"`
	Pattern string `json:"pattern"`
}

// searchIndex is an in-memory full-text index over task titles and notes.
type searchIndex struct {
	index bleve.Index
}

func newSearchIndex() (*searchIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create task index: %w", err)
	}
	return &searchIndex{index: idx}, nil
}

// buildIndexMapping creates the Bleve index mapping for tasks.
func buildIndexMapping() mapping.IndexMapping {
	taskMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	taskMapping.AddFieldMappingsAt("title", textFieldMapping)
	taskMapping.AddFieldMappingsAt("notes", textFieldMapping)
	taskMapping.AddFieldMappingsAt("pattern", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = taskMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

func (s *searchIndex) put(t *Task) error {
	doc := taskDocument{
		Title:   t.Title,
		Notes:   t.Notes,
		Pattern: string(t.RepeatPattern),
	}
	if err := s.index.Index(t.ID, doc); err != nil {
		return fmt.Errorf("failed to index task %s: %w", t.ID, err)
	}
	return nil
}

func (s *searchIndex) remove(id string) error {
	return s.index.Delete(id)
}

// search returns matching task IDs, best match first. Title matches are
// boosted over notes matches.
func (s *searchIndex) search(text string, limit int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	title := bleve.NewMatchQuery(text)
	title.SetField("title")
	title.SetBoost(2.0)

	notes := bleve.NewMatchQuery(text)
	notes.SetField("notes")

	var q query.Query = bleve.NewDisjunctionQuery(title, notes)

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("task search failed: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (s *searchIndex) close() error {
	return s.index.Close()
}
