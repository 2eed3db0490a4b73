package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

// CourseSearchRepo keeps published courses searchable by title and description.
type CourseSearchRepo struct {
	client *elasticsearch.Client
	index  string
}

func NewCourseSearchRepository(client *elasticsearch.Client, index string) *CourseSearchRepo {
	return &CourseSearchRepo{client: client, index: index}
}

type courseDoc struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Slug        string  `json:"slug"`
	Level       string  `json:"level"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
}

func newCourseDoc(c models.Course) courseDoc {
	return courseDoc{
		Title:       c.Title,
		Description: c.Description,
		Slug:        c.Slug,
		Level:       c.Level,
		Price:       c.EffectivePrice(),
		Rating:      c.Rating,
	}
}

type m = map[string]any

func prefixText() m {
	return m{"type": "text", "analyzer": "course_prefix", "search_analyzer": "standard"}
}

var courseIndexBody = m{
	"settings": m{
		"analysis": m{
			"tokenizer": m{
				"course_prefix_tokenizer": m{
					"type":        "edge_ngram",
					"min_gram":    2,
					"max_gram":    20,
					"token_chars": []string{"letter", "digit"},
				},
			},
			"analyzer": m{
				"course_prefix": m{
					"tokenizer": "course_prefix_tokenizer",
					"filter":    []string{"lowercase", "asciifolding"},
				},
			},
		},
	},
	"mappings": m{
		"properties": m{
			"title":       prefixText(),
			"description": prefixText(),
			"slug":        m{"type": "keyword"},
			"level":       m{"type": "keyword"},
			"price":       m{"type": "scaled_float", "scaling_factor": 100},
			"rating":      m{"type": "half_float"},
		},
	},
}

// call runs req and turns transport failures and unexpected statuses into errors.
// Statuses listed in allow are returned to the caller without error.
func (r *CourseSearchRepo) call(ctx context.Context, op string, req esapi.Request, allow ...int) (*esapi.Response, error) {
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, fmt.Errorf("elastic %s: %w", op, err)
	}
	if res.IsError() {
		for _, code := range allow {
			if res.StatusCode == code {
				return res, nil
			}
		}
		defer res.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("elastic %s: %s: %s", op, res.Status(), bytes.TrimSpace(msg))
	}
	return res, nil
}

func (r *CourseSearchRepo) CreateIndexIfNotExist(ctx context.Context) error {
	res, err := r.call(ctx, "index exists", esapi.IndicesExistsRequest{Index: []string{r.index}}, http.StatusNotFound)
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		return nil
	}

	body, err := json.Marshal(courseIndexBody)
	if err != nil {
		return fmt.Errorf("encode course mapping: %w", err)
	}
	res, err = r.call(ctx, "create index", esapi.IndicesCreateRequest{Index: r.index, Body: bytes.NewReader(body)})
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// Index creates or replaces the document for a published course.
func (r *CourseSearchRepo) Index(ctx context.Context, course models.Course) error {
	data, err := json.Marshal(newCourseDoc(course))
	if err != nil {
		return fmt.Errorf("encode course %s: %w", course.ID, err)
	}
	res, err := r.call(ctx, "index course", esapi.IndexRequest{
		Index:      r.index,
		DocumentID: course.ID.String(),
		Refresh:    "true",
		Body:       bytes.NewReader(data),
	})
	if err != nil {
		return err
	}
	return res.Body.Close()
}

// Delete is a no-op for documents that were never indexed.
func (r *CourseSearchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.call(ctx, "delete course", esapi.DeleteRequest{
		Index:      r.index,
		DocumentID: id.String(),
		Refresh:    "true",
	}, http.StatusNotFound)
	if err != nil {
		return err
	}
	return res.Body.Close()
}

func searchBody(query, level string, limit, offset int) m {
	boolQuery := m{
		"must": m{
			"multi_match": m{
				"query":                query,
				"fields":               []string{"title^3", "description"},
				"fuzziness":            "AUTO",
				"minimum_should_match": "2<75%",
			},
		},
	}
	if level != "" {
		boolQuery["filter"] = []m{{"term": m{"level": level}}}
	}
	return m{
		"query":            m{"bool": boolQuery},
		"sort":             []any{"_score", m{"rating": "desc"}},
		"from":             offset,
		"size":             limit,
		"track_total_hits": true,
		"_source":          false,
	}
}

type searchResult struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns matching course ids by relevance and the total hit count.
func (r *CourseSearchRepo) Search(ctx context.Context, query, level string, limit, offset int) ([]uuid.UUID, int, error) {
	if limit <= 0 {
		limit = 10
	}
	body, err := json.Marshal(searchBody(query, level, limit, offset))
	if err != nil {
		return nil, 0, fmt.Errorf("encode search: %w", err)
	}
	res, err := r.call(ctx, "search courses", esapi.SearchRequest{Index: []string{r.index}, Body: bytes.NewReader(body)})
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	var out searchResult
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("decode search: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, out.Hits.Total.Value, nil
}
