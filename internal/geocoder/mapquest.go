package geocoder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultMapQuestURL is the MapQuest geocoding API root.
const DefaultMapQuestURL = "https://www.mapquestapi.com/geocoding/v1"

// MapQuest queries the MapQuest geocoding API.
type MapQuest struct {
	client *resty.Client
	apiKey string
}

// NewMapQuest builds a MapQuest client. An empty baseURL uses the public API.
func NewMapQuest(apiKey, baseURL string, timeout time.Duration) *MapQuest {
	if baseURL == "" {
		baseURL = DefaultMapQuestURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept": "application/json",
		})
	return &MapQuest{client: client, apiKey: apiKey}
}

type mqResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mqLocation `json:"locations"`
	} `json:"results"`
}

type mqLocation struct {
	Street     string `json:"street"`
	City       string `json:"adminArea5"`
	County     string `json:"adminArea4"`
	State      string `json:"adminArea3"`
	Country    string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

// Geocode implements Geocoder.
func (m *MapQuest) Geocode(ctx context.Context, address string) ([]Location, error) {
	var out mqResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      m.apiKey,
			"location": address,
		}).
		SetResult(&out).
		Get("/address")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode())
	}
	if out.Info.StatusCode != 0 {
		return nil, fmt.Errorf("%w: %s", ErrProvider, strings.Join(out.Info.Messages, "; "))
	}

	var locs []Location
	for _, r := range out.Results {
		for _, l := range r.Locations {
			locs = append(locs, Location{
				Latitude:         l.LatLng.Lat,
				Longitude:        l.LatLng.Lng,
				FormattedAddress: formatAddress(l),
				Street:           l.Street,
				City:             l.City,
				State:            l.State,
				Zipcode:          l.PostalCode,
				Country:          l.Country,
			})
		}
	}
	return locs, nil
}

func formatAddress(l mqLocation) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{l.Street, l.City, strings.TrimSpace(l.State + " " + l.PostalCode), l.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
