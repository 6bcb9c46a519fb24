// Package lexical adapts Bleve as the full-text (FTS) store: a CJK-safe
// bigram analyzer, boolean query construction per the number of non-stop
// terms in a query, and tenant/file scoping matching the vector store.
package lexical

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/cjk"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

const cjkAnalyzerName = "knowledge_cjk"

// stopWords is the exact Chinese stop-word set the FTS query builder strips
// before deciding AND-mode vs bare-term mode, treating an all-stop-word
// query as pass-through (no filtering).
var stopWords = map[string]bool{
	"是": true, "的": true, "了": true, "在": true, "有": true,
	"这": true, "那": true, "和": true, "与": true, "怎么": true,
	"如何": true, "什么": true, "哪些": true, "为什么": true,
}

type document struct {
	UserID     string `json:"user_id"`
	FilePath   string `json:"file_path"`
	Content    string `json:"content"`
	FTSContent string `json:"fts_content"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Category   string `json:"category"`
	Language   string `json:"language"`
}

// Store is a bleve-backed full-text index, one per process.
type Store struct {
	index bleve.Index
}

// New builds an in-memory (or on-disk, if path != "") bleve index with a
// CJK-aware content field.
func New(path string) (*Store, error) {
	mapping, err := buildMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to build index mapping: %w", err)
	}

	var index bleve.Index
	if path == "" {
		index, err = bleve.NewMemOnly(mapping)
	} else {
		index, err = bleve.New(path, mapping)
		if err != nil && err == bleve.ErrorIndexPathExists {
			index, err = bleve.Open(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bleve index: %w", err)
	}

	return &Store{index: index}, nil
}

func buildMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomAnalyzer(cjkAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
			cjk.BigramName,
		},
	}); err != nil {
		return nil, err
	}

	docMapping := bleve.NewDocumentMapping()

	// content is stored for display but not separately indexed; fts_content
	// is the field term queries run against.
	contentField := bleve.NewTextFieldMapping()
	contentField.Index = false
	docMapping.AddFieldMappingsAt("content", contentField)

	ftsField := bleve.NewTextFieldMapping()
	ftsField.Analyzer = cjkAnalyzerName
	docMapping.AddFieldMappingsAt("fts_content", ftsField)

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("user_id", keyword)
	docMapping.AddFieldMappingsAt("file_path", keyword)
	docMapping.AddFieldMappingsAt("category", keyword)

	im.DefaultMapping = docMapping
	return im, nil
}

// BatchInsert upserts chunks (bleve indexing by document ID is naturally
// idempotent, so re-indexing an updated file's chunks overwrites the old
// documents with the same IDs).
func (s *Store) BatchInsert(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	batch := s.index.NewBatch()
	for _, c := range chunks {
		doc := document{
			UserID:     c.UserID,
			FilePath:   c.FilePath,
			Content:    c.Content,
			FTSContent: c.FTSContent,
			StartLine:  c.Range.StartLine,
			EndLine:    c.Range.EndLine,
			Category:   string(c.Category),
			Language:   c.Language,
		}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("failed to stage document %s: %w", c.ID, err)
		}
	}
	return s.index.Batch(batch)
}

// FullTextSearch builds a boolean query per §4.4: terms with two or more
// non-stop-word tokens use AND-mode (every term required); a single
// remaining term searches bare; an all-stop-word query passes through with
// no term filtering. Results are strictly ordered by score, and only
// positive scores are returned.
func (s *Store) FullTextSearch(ctx context.Context, userID, text string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	terms := significantTerms(text)

	var contentQuery bleve.Query
	switch len(terms) {
	case 0:
		contentQuery = bleve.NewMatchAllQuery()
	case 1:
		mq := bleve.NewMatchQuery(terms[0])
		mq.SetField("fts_content")
		contentQuery = mq
	default:
		conjuncts := make([]bleve.Query, 0, len(terms))
		for _, term := range terms {
			mq := bleve.NewMatchQuery(term)
			mq.SetField("fts_content")
			conjuncts = append(conjuncts, mq)
		}
		contentQuery = bleve.NewConjunctionQuery(conjuncts...)
	}

	userQuery := bleve.NewMatchQuery(userID)
	userQuery.SetField("user_id")

	finalQuery := bleve.NewConjunctionQuery(contentQuery, userQuery)

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	req.Fields = []string{"file_path", "content", "start_line", "end_line", "category", "language"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search fts index: %w", err)
	}

	out := make([]models.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if hit.Score <= 0 {
			continue
		}
		out = append(out, models.SearchResult{
			Chunk: models.Chunk{
				ID:       hit.ID,
				UserID:   userID,
				FilePath: fieldString(hit.Fields, "file_path"),
				Content:  fieldString(hit.Fields, "content"),
				Category: models.FileCategory(fieldString(hit.Fields, "category")),
				Language: fieldString(hit.Fields, "language"),
				Range: models.Range{
					StartLine: fieldInt(hit.Fields, "start_line"),
					EndLine:   fieldInt(hit.Fields, "end_line"),
				},
			},
			Score:  hit.Score,
			Source: "fts",
		})
	}
	return out, nil
}

func fieldString(fields map[string]interface{}, key string) string {
	v, _ := fields[key].(string)
	return v
}

func fieldInt(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// significantTerms tokenizes on whitespace and CJK-adjacent punctuation and
// drops stop words, uniformly regardless of script mix (best-effort
// resolution for mixed-script queries).
func significantTerms(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			return true
		case strings.ContainsRune("，。！？、；：“”‘’（）【】", r):
			return true
		}
		return false
	})

	var terms []string
	for _, f := range fields {
		lower := strings.ToLower(strings.TrimSpace(f))
		if lower == "" || stopWords[lower] {
			continue
		}
		terms = append(terms, lower)
	}
	return terms
}

func (s *Store) DeleteByFilePath(ctx context.Context, userID, filePath string) error {
	ids, err := s.idsForFilePath(userID, filePath)
	if err != nil {
		return err
	}
	return s.deleteIDs(ids)
}

func (s *Store) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := s.idsForUser(userID)
	if err != nil {
		return err
	}
	return s.deleteIDs(ids)
}

func (s *Store) idsForFilePath(userID, filePath string) ([]string, error) {
	userQuery := bleve.NewMatchQuery(userID)
	userQuery.SetField("user_id")
	pathQuery := bleve.NewMatchQuery(filePath)
	pathQuery.SetField("file_path")
	query := bleve.NewConjunctionQuery(userQuery, pathQuery)
	return s.searchIDs(query)
}

func (s *Store) idsForUser(userID string) ([]string, error) {
	userQuery := bleve.NewMatchQuery(userID)
	userQuery.SetField("user_id")
	return s.searchIDs(userQuery)
}

func (s *Store) searchIDs(query bleve.Query) ([]string, error) {
	const pageSize = 1000
	var ids []string
	from := 0
	for {
		req := bleve.NewSearchRequestOptions(query, pageSize, from, false)
		res, err := s.index.Search(req)
		if err != nil {
			return nil, fmt.Errorf("failed to search for deletion candidates: %w", err)
		}
		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}
		if len(res.Hits) < pageSize {
			break
		}
		from += pageSize
	}
	return ids, nil
}

func (s *Store) deleteIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

func (s *Store) Close() error {
	return s.index.Close()
}
