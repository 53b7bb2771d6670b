// internal/leads/search.go
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SearchIndex mirrors leads into Elasticsearch so the back office can run
// full-text and tier queries without touching Postgres.
type SearchIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewSearchIndex(es *elasticsearch.Client, index string) *SearchIndex {
	return &SearchIndex{es: es, index: index}
}

// leadDocument is what actually lands in the index: the searchable subset
// of the lead, not the full scoring result.
type leadDocument struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Variant          string   `json:"variant"`
	Score            int      `json:"score"`
	Tier             string   `json:"tier"`
	RecommendedCodes []string `json:"recommendedCodes"`
	Narrative        string   `json:"narrative,omitempty"`
	CreatedAt        string   `json:"createdAt"`
}

// Index upserts one lead document.
func (s *SearchIndex) Index(ctx context.Context, lead *models.Lead) error {
	doc := leadDocument{
		ID:        lead.ID,
		Name:      lead.Contact.Name,
		Email:     lead.Contact.Email,
		Variant:   lead.Variant,
		Score:     lead.Score,
		Tier:      string(lead.Tier),
		Narrative: lead.Narrative,
		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}
	if lead.Result != nil {
		doc.RecommendedCodes = lead.Result.RecommendedCodes
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal lead document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: lead.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return errors.NewSearchIndexFailedError(lead.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchIndexFailedError(lead.ID, fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}

// Query describes a back-office lead search.
type Query struct {
	Text string
	Tier scoring.LeadTier
	From int
	Size int
}

// Search runs the query and returns matching lead summaries ordered by
// relevance, score-descending on ties.
func (s *SearchIndex) Search(ctx context.Context, q Query) ([]models.LeadSummary, error) {
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 25
	}

	body, err := json.Marshal(buildLeadSearchQuery(q))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &q.From,
		Size:  &q.Size,
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("search response: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source leadDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("failed to decode search response: %w", err))
	}

	summaries := make([]models.LeadSummary, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		createdAt, _ := time.Parse(time.RFC3339, hit.Source.CreatedAt)
		summaries = append(summaries, models.LeadSummary{
			ID:        hit.Source.ID,
			Name:      hit.Source.Name,
			Email:     hit.Source.Email,
			Variant:   hit.Source.Variant,
			Score:     hit.Source.Score,
			Tier:      scoring.LeadTier(hit.Source.Tier),
			CreatedAt: createdAt,
		})
	}
	return summaries, nil
}

// buildLeadSearchQuery assembles the bool query: free text over contact
// fields and narrative, tier as a hard filter.
func buildLeadSearchQuery(q Query) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if q.Text != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"name^3", "email^2", "recommendedCodes^2", "narrative"},
				"type":   "best_fields",
			},
		})
	}

	if q.Tier != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"tier": string(q.Tier)},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"score": "desc"}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"score": "desc"},
		},
	}
}
