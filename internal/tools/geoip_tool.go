package tools

import (
	"context"
	"encoding/json"

	"github.com/dileep-u-k/location-agent/internal/fetch"
)

// --- GeoIP Tool Adapter ---

const geoIPAPIBase = "https://ipinfo.io"

// unknownLocationMessage is the payload returned when the lookup cannot
// produce a coordinate. It is a valid answer for the agent, not an error.
const unknownLocationMessage = "I don't know where you are"

// GeoIPClient estimates the user's location from the gateway's public IP
// address. Useful when the user has not provided a precise location of their
// own.
type GeoIPClient struct {
	fetcher *fetch.Client
	baseURL string
}

// GeoIPOption configures a GeoIPClient.
type GeoIPOption func(*GeoIPClient)

// WithGeoIPBaseURL overrides the lookup host. Used by tests.
func WithGeoIPBaseURL(base string) GeoIPOption {
	return func(gc *GeoIPClient) { gc.baseURL = base }
}

// NewGeoIPClient creates a geoip adapter using the shared fetch client.
func NewGeoIPClient(fetcher *fetch.Client, opts ...GeoIPOption) *GeoIPClient {
	gc := &GeoIPClient{fetcher: fetcher, baseURL: geoIPAPIBase}
	for _, opt := range opts {
		opt(gc)
	}
	return gc
}

// Register adds the geoip tool to the registry.
func (gc *GeoIPClient) Register(reg *Registry) error {
	def := Definition{
		Name:        "get_location",
		ActionGroup: placesActionGroup,
		Description: "Get the user's approximate location as a latitude and longitude, guessed from their IP " +
			"address. Useful if the user has not provided their own precise location.",
	}
	return reg.Register(def, func(ctx context.Context, _ map[string]string) (string, error) {
		return gc.Locate(ctx)
	})
}

// Locate performs one geoip lookup. A failed lookup is reported as a textual
// "don't know" payload the agent can reason about.
func (gc *GeoIPClient) Locate(ctx context.Context) (string, error) {
	body, err := gc.fetcher.Get(ctx, gc.baseURL+"/json", nil)
	if err != nil {
		return unknownLocationMessage, nil
	}
	var doc struct {
		Loc string `json:"loc"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil || doc.Loc == "" {
		return unknownLocationMessage, nil
	}
	return doc.Loc + " (using geoip, so this is an approximation)", nil
}
