package blog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

// SearchIndex is an external full-text index of published blogs. When none
// is configured the store's text index serves search.
type SearchIndex interface {
	Index(ctx context.Context, b *Blog) error
	Remove(ctx context.Context, id bson.ObjectID) error
	// Search returns matching ids in relevance order and the total hit count.
	Search(ctx context.Context, query string, p pagination.Params) ([]bson.ObjectID, int64, error)
}

var ErrSearchIndex = errors.New("blog: search index request failed")

// OpenSearchIndex implements SearchIndex on one OpenSearch index.
type OpenSearchIndex struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchIndex(client *opensearch.Client, index string) *OpenSearchIndex {
	return &OpenSearchIndex{client: client, index: index}
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "title":       {"type": "text"},
      "excerpt":     {"type": "text"},
      "content":     {"type": "text"},
      "tags":        {"type": "keyword"},
      "category":    {"type": "keyword"},
      "publishedAt": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping unless it exists.
func (s *OpenSearchIndex) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.Join(ErrSearchIndex, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = s.client.Indices.Create(s.index,
		s.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		s.client.Indices.Create.WithContext(ctx),
	)
	return checkResponse(res, err)
}

type searchDocument struct {
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Category    Category   `json:"category"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (s *OpenSearchIndex) Index(ctx context.Context, b *Blog) error {
	doc := searchDocument{
		Title:       b.Title,
		Excerpt:     b.Excerpt,
		Content:     b.Content,
		Tags:        b.Tags,
		Category:    b.Category,
		PublishedAt: b.PublishedAt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithDocumentID(b.ID.Hex()),
		s.client.Index.WithContext(ctx),
	)
	return checkResponse(res, err)
}

// Remove deletes the document. A missing document is not an error.
func (s *OpenSearchIndex) Remove(ctx context.Context, id bson.ObjectID) error {
	res, err := s.client.Delete(s.index, id.Hex(), s.client.Delete.WithContext(ctx))
	if err == nil && res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, err)
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *OpenSearchIndex) Search(ctx context.Context, query string, p pagination.Params) ([]bson.ObjectID, int64, error) {
	p = p.Normalize()
	body, err := json.Marshal(map[string]any{
		"from":    p.Skip(),
		"size":    p.Limit,
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^3", "tags^2", "excerpt", "content"},
				"fuzziness": "AUTO",
			},
		},
	})
	if err != nil {
		return nil, 0, err
	}
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, 0, errors.Join(ErrSearchIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, errors.Join(ErrSearchIndex, fmt.Errorf("status %d", res.StatusCode))
	}

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, errors.Join(ErrSearchIndex, err)
	}
	ids := make([]bson.ObjectID, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		id, err := bson.ObjectIDFromHex(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, out.Hits.Total.Value, nil
}

func checkResponse(res *opensearchapi.Response, err error) error {
	if err != nil {
		return errors.Join(ErrSearchIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.Join(ErrSearchIndex, fmt.Errorf("status %d: %s", res.StatusCode, msg))
	}
	return nil
}
