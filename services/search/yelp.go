// File: services/search/yelp.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foodbot/models"
	"foodbot/utils"

	"go.uber.org/zap"
)

const defaultYelpAPIURL = "https://api.yelp.com/v3"

// YelpClient calls the Yelp Fusion business search endpoint. One request per
// Search call: no retries, no pagination, no caching.
type YelpClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	logger     *zap.Logger
}

type yelpBusiness struct {
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	URL      string  `json:"url"`
	ImageURL string  `json:"image_url"`
}

type yelpSearchResponse struct {
	Businesses *[]yelpBusiness `json:"businesses"`
}

func NewYelpClient(baseURL, secret string, timeout time.Duration, logger *zap.Logger) *YelpClient {
	if baseURL == "" {
		baseURL = defaultYelpAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YelpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Search sends category and location to Yelp exactly as given.
func (y *YelpClient) Search(ctx context.Context, category, location string) ([]models.Business, error) {
	start := time.Now()
	businesses, err := y.search(ctx, category, location)
	utils.SearchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		utils.SearchRequests.WithLabelValues("error").Inc()
		y.logger.Warn("Yelp search failed",
			zap.String("term", category),
			zap.String("location", location),
			zap.Error(err),
		)
	case len(businesses) == 0:
		utils.SearchRequests.WithLabelValues("empty").Inc()
	default:
		utils.SearchRequests.WithLabelValues("ok").Inc()
	}
	return businesses, err
}

func (y *YelpClient) search(ctx context.Context, category, location string) ([]models.Business, error) {
	params := url.Values{}
	params.Set("term", category)
	params.Set("location", location)
	endpoint := y.baseURL + "/businesses/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build yelp request: %w", newSearchError(CodeRequestFailed, err.Error()))
	}
	req.Header.Set("Authorization", "Bearer "+y.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call yelp: %w", newSearchError(CodeRequestFailed, err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("call yelp: %w", &SearchError{
			Code:    CodeBadStatus,
			Message: strings.TrimSpace(string(body)),
			Status:  resp.StatusCode,
		})
	}

	var payload yelpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode yelp response: %w", newSearchError(CodeMalformedResponse, err.Error()))
	}
	if payload.Businesses == nil {
		return nil, fmt.Errorf("decode yelp response: %w", newSearchError(CodeMalformedResponse, "missing businesses"))
	}

	out := make([]models.Business, 0, len(*payload.Businesses))
	for _, b := range *payload.Businesses {
		out = append(out, models.Business{
			Name:     b.Name,
			Rating:   b.Rating,
			URL:      b.URL,
			ImageURL: b.ImageURL,
		})
	}
	return out, nil
}
