package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const mapboxBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

type mapboxFeature struct {
	Center    [2]float64 `json:"center"` // longitude, latitude
	Relevance float64    `json:"relevance"`
}

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

// bestMatch returns the latitude and longitude of the most relevant feature.
func (r mapboxResponse) bestMatch() (lat, lng float64, ok bool) {
	if len(r.Features) == 0 {
		return 0, 0, false
	}
	best := r.Features[0]
	for _, f := range r.Features[1:] {
		if f.Relevance > best.Relevance {
			best = f
		}
	}
	return best.Center[1], best.Center[0], true
}

type Geocoder interface {
	Geocode(ctx context.Context, parts ...string) (lat, lng float64, err error)
}

type MapboxGeocoder struct {
	AccessToken string
	BaseURL     string
	Country     string
	Client      *http.Client
}

func NewMapboxGeocoder(accessToken string) *MapboxGeocoder {
	return &MapboxGeocoder{
		AccessToken: accessToken,
		BaseURL:     mapboxBaseURL,
		Country:     "ID",
		Client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Geocode joins the non-empty address parts and resolves them to coordinates.
func (g *MapboxGeocoder) Geocode(ctx context.Context, parts ...string) (float64, float64, error) {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return 0, 0, errors.New("empty address")
	}

	apiURL := fmt.Sprintf("%s/%s.json?access_token=%s&limit=5",
		strings.TrimRight(g.BaseURL, "/"),
		url.PathEscape(strings.Join(nonEmpty, ", ")),
		url.QueryEscape(g.AccessToken),
	)
	if g.Country != "" {
		apiURL += "&country=" + url.QueryEscape(g.Country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).DecodeContext(ctx, &body); err != nil {
		return 0, 0, fmt.Errorf("decode geocoding response: %w", err)
	}
	lat, lng, ok := body.bestMatch()
	if !ok {
		return 0, 0, fmt.Errorf("no geocoding match for %q", strings.Join(nonEmpty, ", "))
	}
	return lat, lng, nil
}
