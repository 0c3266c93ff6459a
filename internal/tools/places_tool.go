package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dileep-u-k/location-agent/internal/fetch"
)

// --- Places Tool Adapter (Foursquare) ---

const (
	fsqUnversionedAPIBase = "https://api.foursquare.com"
	fsqVersionedAPIBase   = "https://places-api.foursquare.com"
	placesAPIVersion      = "2024-12-06"

	// placesActionGroup is the action group all location tools are published
	// under in the schema sent to the agent.
	placesActionGroup            = "LocationActions"
	placesActionGroupDescription = "Tools for finding places, resolving the user's location, and looking up place details."

	// nullPayload is the sentinel returned alongside an error when a places
	// request fails. The agent sees the error text, never a crash.
	nullPayload = "null"

	// detailFields is the fixed field selector for place detail lookups.
	detailFields = "description,tel,website,social_media,hours,hours_popular,rating,price,menu,photos,tips,tastes,features"
)

// PlacesClient wraps the Foursquare places REST API behind the tool registry
// calling convention. Each method performs exactly one HTTP GET.
//
// The service token is attached as a bearer header on every request; its
// absence is not validated ahead of time — the request proceeds and fails at
// the HTTP layer if the credential is missing or invalid.
type PlacesClient struct {
	fetcher         *fetch.Client
	serviceToken    string
	unversionedBase string
	versionedBase   string
}

// PlacesOption configures a PlacesClient.
type PlacesOption func(*PlacesClient)

// WithPlacesBaseURLs overrides the Foursquare hosts. Used by tests.
func WithPlacesBaseURLs(unversioned, versioned string) PlacesOption {
	return func(pc *PlacesClient) {
		pc.unversionedBase = unversioned
		pc.versionedBase = versioned
	}
}

// NewPlacesClient creates a places adapter using the shared fetch client.
func NewPlacesClient(fetcher *fetch.Client, serviceToken string, opts ...PlacesOption) *PlacesClient {
	pc := &PlacesClient{
		fetcher:         fetcher,
		serviceToken:    serviceToken,
		unversionedBase: fsqUnversionedAPIBase,
		versionedBase:   fsqVersionedAPIBase,
	}
	for _, opt := range opts {
		opt(pc)
	}
	return pc
}

// Register adds the places tools to the registry with their explicit
// parameter schemas.
func (pc *PlacesClient) Register(reg *Registry) error {
	toolset := []struct {
		def Definition
		fn  HandlerFunc
	}{
		{
			def: Definition{
				Name:        "search_near",
				ActionGroup: placesActionGroup,
				Description: "Search for places matching a concept near a location. Prefer a named region " +
					"(the where parameter); only fall back to a latitude/longitude pair plus radius when " +
					"no named region is available.",
				Parameters: []Parameter{
					{Name: "what", Type: TypeString, Required: true,
						Description: "Concept you are looking for (e.g., coffee shop, Hard Rock Cafe)."},
					{Name: "where", Type: TypeString,
						Description: "A named geographic region (e.g., Los Angeles or Fort Greene)."},
					{Name: "ll", Type: TypeString,
						Description: "Comma-separated latitude,longitude pair (e.g., 40.74,-74.0). Only used when where is absent."},
					{Name: "radius", Type: TypeInteger,
						Description: "Search radius in meters around ll. Only used together with ll."},
				},
			},
			fn: func(ctx context.Context, args map[string]string) (string, error) {
				return pc.SearchNear(ctx, args["what"], args["where"], args["ll"], args["radius"])
			},
		},
		{
			def: Definition{
				Name:        "place_from_latitude_and_longitude",
				ActionGroup: placesActionGroup,
				Description: "Get the most likely place at a reported location. Returns the geographic area by name.",
				Parameters: []Parameter{
					{Name: "ll", Type: TypeString, Required: true,
						Description: "Comma-separated latitude,longitude pair (e.g., 40.74,-74.0)."},
				},
			},
			fn: func(ctx context.Context, args map[string]string) (string, error) {
				return pc.PlaceFromLatLng(ctx, args["ll"])
			},
		},
		{
			def: Definition{
				Name:        "place_details",
				ActionGroup: placesActionGroup,
				Description: "Get detailed information about a place by its fsq_place_id (returned from search_near), " +
					"including description, phone, website, social media, hours, popular hours, rating (out of 10), " +
					"price, menu, top photos, top tips, top tastes, and features such as takes reservations.",
				Parameters: []Parameter{
					{Name: "fsq_place_id", Type: TypeString, Required: true,
						Description: "Foursquare id of the place, as returned by search_near."},
				},
			},
			fn: func(ctx context.Context, args map[string]string) (string, error) {
				return pc.PlaceDetails(ctx, args["fsq_place_id"])
			},
		},
	}

	for _, t := range toolset {
		if err := reg.Register(t.def, t.fn); err != nil {
			return err
		}
	}
	reg.DescribeGroup(placesActionGroup, placesActionGroupDescription)
	return nil
}

// SearchNear searches for places matching what near a location. A named
// region takes precedence; the ll/radius pair is only sent when no region is
// given, so the two addressing modes never mix in one query.
func (pc *PlacesClient) SearchNear(ctx context.Context, what, where, ll, radius string) (string, error) {
	params := url.Values{}
	params.Set("query", what)
	params.Set("limit", "5")
	if where != "" {
		params.Set("near", where)
	} else if ll != "" {
		params.Set("ll", ll)
		if radius != "" {
			params.Set("radius", radius)
		}
	}
	return pc.submit(ctx, pc.versionedBase+"/places/search", params, true, false)
}

// PlaceFromLatLng resolves a coordinate pair to the most likely named place.
func (pc *PlacesClient) PlaceFromLatLng(ctx context.Context, ll string) (string, error) {
	params := url.Values{}
	params.Set("ll", ll)
	params.Set("limit", "1")
	return pc.submit(ctx, pc.unversionedBase+"/v3/places/nearby", params, false, false)
}

// PlaceDetails fetches the detail document for one place. Details are stable
// enough to cache.
func (pc *PlacesClient) PlaceDetails(ctx context.Context, fsqPlaceID string) (string, error) {
	params := url.Values{}
	params.Set("fields", detailFields)
	endpoint := fmt.Sprintf("%s/v3/places/%s", pc.unversionedBase, url.PathEscape(fsqPlaceID))
	return pc.submit(ctx, endpoint, params, false, true)
}

// submit performs one GET against the places API. On any failure it returns
// the "null" sentinel payload together with the error description.
func (pc *PlacesClient) submit(ctx context.Context, endpoint string, params url.Values, versioned, cacheable bool) (string, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + pc.serviceToken,
	}
	if versioned {
		headers["X-Places-Api-Version"] = placesAPIVersion
	}
	fullURL := endpoint + "?" + params.Encode()

	var body string
	var err error
	if cacheable {
		body, err = pc.fetcher.GetCached(ctx, fullURL, headers)
	} else {
		body, err = pc.fetcher.Get(ctx, fullURL, headers)
	}
	if err != nil {
		return nullPayload, err
	}
	return body, nil
}
