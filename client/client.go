package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/openprocure/tendergraph"
	"github.com/openprocure/tendergraph/internal/domain"
)

const defaultTimeout = 3 * time.Second

// Client is a thin HTTP client for a tendergraph node. Read results are
// not cached; only the well-known descriptor is.
type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
}

func New(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(10*time.Minute, 15*time.Minute),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetServiceInfo fetches the well-known descriptor, cached per process.
func (c *Client) GetServiceInfo(ctx context.Context) (tendergraph.ServiceInfo, error) {
	cacheKey := "wellknown:" + c.baseURL
	if x, found := c.cache.Get(cacheKey); found {
		return x.(tendergraph.ServiceInfo), nil
	}

	var info tendergraph.ServiceInfo
	err := c.get(ctx, "/.well-known/tendergraph", &info)
	if err != nil {
		return tendergraph.ServiceInfo{}, fmt.Errorf("failed to get service info: %v", err)
	}

	c.cache.Set(cacheKey, info, cache.DefaultExpiration)
	return info, nil
}

func (c *Client) GetCriteria(ctx context.Context, tenderID uuid.UUID, category string) ([]domain.Criterion, error) {
	query := url.Values{"tender": {tenderID.String()}}
	if category != "" {
		query.Set("category", category)
	}

	var criteria []domain.Criterion
	err := c.get(ctx, "/api/v1/criteria?"+query.Encode(), &criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to get criteria: %v", err)
	}
	return criteria, nil
}

func (c *Client) GetDependencies(ctx context.Context, criterionID uuid.UUID) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	err := c.get(ctx, "/api/v1/criteria/"+criterionID.String()+"/dependencies", &deps)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependencies: %v", err)
	}
	return deps, nil
}

func (c *Client) HasPath(ctx context.Context, from, to uuid.UUID) (bool, error) {
	query := url.Values{"from": {from.String()}, "to": {to.String()}}

	var out struct {
		HasPath bool `json:"hasPath"`
	}
	err := c.get(ctx, "/api/v1/graph/path?"+query.Encode(), &out)
	if err != nil {
		return false, fmt.Errorf("failed to query path: %v", err)
	}
	return out.HasPath, nil
}

func (c *Client) GetEvidence(ctx context.Context, criterionID uuid.UUID) ([]domain.Evidence, error) {
	var trail []domain.Evidence
	err := c.get(ctx, "/api/v1/criteria/"+criterionID.String()+"/evidence", &trail)
	if err != nil {
		return nil, fmt.Errorf("failed to get evidence: %v", err)
	}
	return trail, nil
}

func (c *Client) GetTenderImages(ctx context.Context, tenderID uuid.UUID) ([]domain.TenderImage, error) {
	var images []domain.TenderImage
	err := c.get(ctx, "/api/v1/tenders/"+tenderID.String()+"/images", &images)
	if err != nil {
		return nil, fmt.Errorf("failed to get tender images: %v", err)
	}
	return images, nil
}

func (c *Client) SuggestDocType(ctx context.Context, filename string) (string, bool, error) {
	query := url.Values{"filename": {filename}}

	var out struct {
		Type    string `json:"type"`
		Matched bool   `json:"matched"`
	}
	err := c.get(ctx, "/api/v1/doctype/suggest?"+query.Encode(), &out)
	if err != nil {
		return "", false, fmt.Errorf("failed to suggest document type: %v", err)
	}
	return out.Type, out.Matched, nil
}

func (c *Client) CreateCriterion(ctx context.Context, body any) (domain.Criterion, error) {
	var created domain.Criterion
	err := c.post(ctx, "/api/v1/criteria", body, &created)
	if err != nil {
		return domain.Criterion{}, fmt.Errorf("failed to create criterion: %v", err)
	}
	return created, nil
}

func (c *Client) get(ctx context.Context, path string, response any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, response any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}
