// Package nutritionix is a small client for the Nutritionix v2 API: instant
// food search and natural language nutrient lookup.
package nutritionix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://trackapi.nutritionix.com"

// ErrNoFoods is returned when a nutrient lookup matches nothing.
var ErrNoFoods = errors.New("nutritionix: no foods in response")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nutritionix API error %d: %s", e.StatusCode, e.Body)
}

// Client talks to one Nutritionix endpoint with one set of credentials.
type Client struct {
	baseURL string
	appID   string
	appKey  string
	http    *http.Client
}

// NewClient builds a client. An empty baseURL selects DefaultBaseURL and a
// nil httpClient gets a 10 second timeout.
func NewClient(baseURL, appID, appKey string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		appKey:  appKey,
		http:    httpClient,
	}
}

// Search runs an instant search. A blank query makes no request.
func (c *Client) Search(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, nil
	}

	u, err := url.Parse(c.baseURL + "/v2/search/instant/")
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to parse base URL: %w", err)
	}
	params := u.Query()
	params.Set("query", query)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	var ir instantResponse
	if err := c.do(req, &ir); err != nil {
		return SearchResult{}, err
	}

	res := SearchResult{
		Common:  make([]FoodCandidate, 0, len(ir.Common)),
		Branded: make([]FoodCandidate, 0, len(ir.Branded)),
	}
	for _, f := range ir.Common {
		res.Common = append(res.Common, FoodCandidate{ID: f.TagID, Label: f.FoodName, Source: SourceCommon})
	}
	for _, f := range ir.Branded {
		res.Branded = append(res.Branded, FoodCandidate{
			ID:     f.NixItemID,
			Label:  BrandedLabel(f.BrandNameItemName, f.Calories),
			Source: SourceBranded,
		})
	}
	return res, nil
}

// BrandedLabel renders "<brand item> - <calories> kcal".
func BrandedLabel(name string, calories float64) string {
	return name + " - " + strconv.FormatFloat(calories, 'f', -1, 64) + " kcal"
}

// LookupNutrients resolves a free text description to nutrient data.
func (c *Client) LookupNutrients(ctx context.Context, description string) (NutrientDetail, error) {
	b, err := json.Marshal(nutrientsRequest{Query: description})
	if err != nil {
		return NutrientDetail{}, fmt.Errorf("failed to marshal nutrients payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/natural/nutrients", bytes.NewReader(b))
	if err != nil {
		return NutrientDetail{}, fmt.Errorf("failed to create request: %w", err)
	}

	var nr nutrientsResponse
	if err := c.do(req, &nr); err != nil {
		return NutrientDetail{}, err
	}
	if len(nr.Foods) == 0 {
		return NutrientDetail{}, ErrNoFoods
	}
	return nr.Foods[0], nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call nutritionix: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read nutritionix response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse nutritionix JSON: %w", err)
	}
	return nil
}
