package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

const mapping = `{
  "mappings": {
    "properties": {
      "name":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "description": {"type": "text"},
      "category":    {"type": "keyword"},
      "price":       {"type": "scaled_float", "scaling_factor": 100},
      "quantity":    {"type": "integer"}
    }
  }
}`

// Index keeps the sweets index in step with the catalog.
type Index struct {
	Client *elasticsearch.Client
	Name   string
}

type document struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
}

func docID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// Ensure creates the index with its mapping when it does not exist yet.
func (i *Index) Ensure(ctx context.Context) error {
	res, err := i.Client.Indices.Exists([]string{i.Name}, i.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.Client.Indices.Create(i.Name,
		i.Client.Indices.Create.WithContext(ctx),
		i.Client.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return err
	}
	return checkResponse(res)
}

func (i *Index) Index(ctx context.Context, s *models.Sweet) error {
	body, err := json.Marshal(document{
		Name:        s.Name,
		Description: s.Description,
		Category:    string(s.Category),
		Price:       s.Price.StringFixed(2),
		Quantity:    s.Quantity,
	})
	if err != nil {
		return err
	}

	res, err := i.Client.Index(i.Name, bytes.NewReader(body),
		i.Client.Index.WithContext(ctx),
		i.Client.Index.WithDocumentID(docID(s.ID)),
	)
	if err != nil {
		return err
	}
	return checkResponse(res)
}

func (i *Index) Remove(ctx context.Context, id uint) error {
	res, err := i.Client.Delete(i.Name, docID(id), i.Client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res)
}

// Search runs a fuzzy multi_match and returns the total hit count and the
// ids of the requested window in relevance order.
func (i *Index) Search(ctx context.Context, q string, from, size int) (int64, []uint, error) {
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from":    from,
		"size":    size,
		"_source": false,
	})
	if err != nil {
		return 0, nil, err
	}

	res, err := i.Client.Search(
		i.Client.Search.WithContext(ctx),
		i.Client.Search.WithIndex(i.Name),
		i.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, err
	}
	return parseHits(raw)
}

func parseHits(raw []byte) (int64, []uint, error) {
	if !gjson.ValidBytes(raw) {
		return 0, nil, fmt.Errorf("search: invalid response body")
	}
	doc := gjson.ParseBytes(raw)
	total := doc.Get("hits.total.value").Int()

	var ids []uint
	for _, hit := range doc.Get("hits.hits.#._id").Array() {
		id, err := strconv.ParseUint(hit.String(), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return total, ids, nil
}
