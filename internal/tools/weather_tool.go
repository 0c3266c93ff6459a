package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dileep-u-k/location-agent/internal/fetch"
)

// --- Weather Tool Adapter (weather.gov) ---

const (
	weatherAPIBase = "https://api.weather.gov"

	weatherActionGroup            = "WeatherActions"
	weatherActionGroupDescription = "Tools for current conditions and hourly forecasts."

	// NoStationsMessage is returned when the point resolves to an empty
	// observation-station list. The chain stops there; no further requests
	// are attempted.
	NoStationsMessage = "No weather stations found near this location"
)

// WeatherClient wraps the weather.gov API behind the tool registry calling
// convention. A forecast is a short deterministic chain of GETs: resolve the
// point, pick the nearest observation station, fetch its latest observation,
// then fetch the hourly forecast referenced by the point document.
//
// weather.gov requires an identifying User-Agent instead of an auth token;
// the shared fetch client carries it.
type WeatherClient struct {
	fetcher *fetch.Client
	baseURL string
}

// WeatherOption configures a WeatherClient.
type WeatherOption func(*WeatherClient)

// WithWeatherBaseURL overrides the weather.gov host. Used by tests.
func WithWeatherBaseURL(base string) WeatherOption {
	return func(wc *WeatherClient) { wc.baseURL = base }
}

// NewWeatherClient creates a weather adapter using the shared fetch client.
func NewWeatherClient(fetcher *fetch.Client, opts ...WeatherOption) *WeatherClient {
	wc := &WeatherClient{fetcher: fetcher, baseURL: weatherAPIBase}
	for _, opt := range opts {
		opt(wc)
	}
	return wc
}

// Register adds the weather tool to the registry.
func (wc *WeatherClient) Register(reg *Registry) error {
	def := Definition{
		Name:        "get_weather",
		ActionGroup: weatherActionGroup,
		Description: "Get the current conditions and hourly forecast for a point specified by latitude and longitude.",
		Parameters: []Parameter{
			{Name: "lat", Type: TypeNumber, Required: true, Description: "Latitude of the point."},
			{Name: "lng", Type: TypeNumber, Required: true, Description: "Longitude of the point."},
		},
	}
	reg.DescribeGroup(weatherActionGroup, weatherActionGroupDescription)
	return reg.Register(def, func(ctx context.Context, args map[string]string) (string, error) {
		lat, err := strconv.ParseFloat(args["lat"], 64)
		if err != nil {
			return "", fmt.Errorf("invalid latitude %q", args["lat"])
		}
		lng, err := strconv.ParseFloat(args["lng"], 64)
		if err != nil {
			return "", fmt.Errorf("invalid longitude %q", args["lng"])
		}
		return wc.Forecast(ctx, lat, lng)
	})
}

// Wire documents for the pieces of the weather.gov responses we consume.
type quantity struct {
	Value *float64 `json:"value"`
}

type pointDoc struct {
	Properties struct {
		ForecastHourly      string `json:"forecastHourly"`
		ObservationStations string `json:"observationStations"`
	} `json:"properties"`
}

type stationsDoc struct {
	Features []stationFeature `json:"features"`
}

type stationFeature struct {
	Geometry struct {
		// GeoJSON order: [longitude, latitude].
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		StationIdentifier string `json:"stationIdentifier"`
	} `json:"properties"`
}

type observationDoc struct {
	Properties struct {
		Temperature           quantity `json:"temperature"`
		WindSpeed             quantity `json:"windSpeed"`
		WindChill             quantity `json:"windChill"`
		PrecipitationLastHour quantity `json:"precipitationLastHour"`
	} `json:"properties"`
}

type forecastDoc struct {
	Properties struct {
		Periods []struct {
			StartTime                  string   `json:"startTime"`
			Temperature                float64  `json:"temperature"`
			TemperatureUnit            string   `json:"temperatureUnit"`
			ProbabilityOfPrecipitation quantity `json:"probabilityOfPrecipitation"`
			WindSpeed                  string   `json:"windSpeed"`
			ShortForecast              string   `json:"shortForecast"`
		} `json:"periods"`
	} `json:"properties"`
}

// Summary is the normalized weather payload handed back to the agent.
type Summary struct {
	Temperature   *float64         `json:"temperature"`
	WindSpeed     *float64         `json:"windSpeed"`
	WindChill     *float64         `json:"windChill"`
	Precipitation *float64         `json:"precipitation"`
	Forecast      []ForecastPeriod `json:"forecast"`
}

// ForecastPeriod is one hourly entry in the normalized forecast.
type ForecastPeriod struct {
	Time                string `json:"time"`
	Temp                string `json:"temp"`
	PrecipitationChance string `json:"precipitationChance"`
	WindSpeed           string `json:"windSpeed"`
	ShortForecast       string `json:"shortForecast"`
}

// Forecast runs the chained lookup for one point and returns the normalized
// summary as JSON. Any step's failure short-circuits without attempting
// subsequent steps.
func (wc *WeatherClient) Forecast(ctx context.Context, lat, lng float64) (string, error) {
	pointEndpoint := fmt.Sprintf("%s/points/%s,%s", wc.baseURL, formatCoord(lat), formatCoord(lng))
	// Point documents map a coordinate to a fixed grid cell, so they are
	// safe to cache.
	pointBody, err := wc.fetcher.GetCached(ctx, pointEndpoint, nil)
	if err != nil {
		return "", fmt.Errorf("point lookup failed: %w", err)
	}
	var point pointDoc
	if err := json.Unmarshal([]byte(pointBody), &point); err != nil {
		return "", fmt.Errorf("failed to parse point document: %w", err)
	}
	if point.Properties.ForecastHourly == "" || point.Properties.ObservationStations == "" {
		return "", fmt.Errorf("point document is missing forecast or station references")
	}

	stationsBody, err := wc.fetcher.Get(ctx, point.Properties.ObservationStations, nil)
	if err != nil {
		return "", fmt.Errorf("station lookup failed: %w", err)
	}
	var stations stationsDoc
	if err := json.Unmarshal([]byte(stationsBody), &stations); err != nil {
		return "", fmt.Errorf("failed to parse station list: %w", err)
	}
	if len(stations.Features) == 0 {
		return NoStationsMessage, nil
	}

	stationID := nearestStation(stations.Features, lat, lng)
	if stationID == "" {
		return "", fmt.Errorf("station list has no usable station identifier")
	}

	// Closest station may have incomplete readings. Airport stations seem
	// to have better coverage; falling back to the next-closest station
	// would be an improvement.
	obsEndpoint := fmt.Sprintf("%s/stations/%s/observations/latest", wc.baseURL, stationID)
	obsBody, err := wc.fetcher.Get(ctx, obsEndpoint, nil)
	if err != nil {
		return "", fmt.Errorf("observation lookup failed: %w", err)
	}
	var obs observationDoc
	if err := json.Unmarshal([]byte(obsBody), &obs); err != nil {
		return "", fmt.Errorf("failed to parse observation: %w", err)
	}

	forecastBody, err := wc.fetcher.Get(ctx, point.Properties.ForecastHourly, nil)
	if err != nil {
		return "", fmt.Errorf("forecast lookup failed: %w", err)
	}
	var forecast forecastDoc
	if err := json.Unmarshal([]byte(forecastBody), &forecast); err != nil {
		return "", fmt.Errorf("failed to parse forecast: %w", err)
	}

	summary := Summary{
		Temperature:   obs.Properties.Temperature.Value,
		WindSpeed:     obs.Properties.WindSpeed.Value,
		WindChill:     obs.Properties.WindChill.Value,
		Precipitation: obs.Properties.PrecipitationLastHour.Value,
		Forecast:      make([]ForecastPeriod, 0, len(forecast.Properties.Periods)),
	}
	for _, period := range forecast.Properties.Periods {
		chance := "unknown"
		if period.ProbabilityOfPrecipitation.Value != nil {
			chance = fmt.Sprintf("%g%%", *period.ProbabilityOfPrecipitation.Value)
		}
		summary.Forecast = append(summary.Forecast, ForecastPeriod{
			Time:                period.StartTime,
			Temp:                fmt.Sprintf("%g%s", period.Temperature, period.TemperatureUnit),
			PrecipitationChance: chance,
			WindSpeed:           period.WindSpeed,
			ShortForecast:       period.ShortForecast,
		})
	}

	out, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode weather summary: %w", err)
	}
	return string(out), nil
}

// nearestStation picks the station minimizing squared Euclidean distance in
// coordinate space. Ties go to the first station in the service-provided
// order.
func nearestStation(features []stationFeature, lat, lng float64) string {
	best := ""
	bestDist := 0.0
	chosen := false
	for _, f := range features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		slng, slat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		d := (slat-lat)*(slat-lat) + (slng-lng)*(slng-lng)
		if !chosen || d < bestDist {
			best = f.Properties.StationIdentifier
			bestDist = d
			chosen = true
		}
	}
	return best
}

// formatCoord renders a coordinate with at most three decimals and trailing
// zeros stripped; the points endpoint rejects excess precision.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
