package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dileep-u-k/location-agent/internal/fetch"
)

type recordedRequest struct {
	path   string
	query  map[string]string
	header http.Header
}

func newPlacesServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var recorded []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := make(map[string]string)
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		recorded = append(recorded, recordedRequest{path: r.URL.Path, query: q, header: r.Header.Clone()})
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &recorded
}

func newTestPlacesClient(srv *httptest.Server) *PlacesClient {
	return NewPlacesClient(fetch.New(), "test-token", WithPlacesBaseURLs(srv.URL, srv.URL))
}

func TestSearchNear_NamedRegion(t *testing.T) {
	srv, recorded := newPlacesServer(t, http.StatusOK, `{"results":[]}`)
	pc := newTestPlacesClient(srv)

	body, err := pc.SearchNear(context.Background(), "coffee", "Fort Greene", "40.69,-73.97", "500")
	require.NoError(t, err)
	assert.Equal(t, `{"results":[]}`, body)

	require.Len(t, *recorded, 1)
	req := (*recorded)[0]
	assert.Equal(t, "/places/search", req.path)
	assert.Equal(t, "coffee", req.query["query"])
	assert.Equal(t, "Fort Greene", req.query["near"])
	assert.Equal(t, "5", req.query["limit"])

	// A named region wins: the coordinate pair must not leak into the query.
	assert.NotContains(t, req.query, "ll")
	assert.NotContains(t, req.query, "radius")

	assert.Equal(t, "Bearer test-token", req.header.Get("Authorization"))
	assert.Equal(t, placesAPIVersion, req.header.Get("X-Places-Api-Version"))
}

func TestSearchNear_CoordinateFallback(t *testing.T) {
	srv, recorded := newPlacesServer(t, http.StatusOK, `{"results":[]}`)
	pc := newTestPlacesClient(srv)

	_, err := pc.SearchNear(context.Background(), "coffee", "", "40.69,-73.97", "500")
	require.NoError(t, err)

	req := (*recorded)[0]
	assert.Equal(t, "40.69,-73.97", req.query["ll"])
	assert.Equal(t, "500", req.query["radius"])
	assert.NotContains(t, req.query, "near")
}

func TestSearchNear_FailureReturnsNullSentinel(t *testing.T) {
	srv, _ := newPlacesServer(t, http.StatusUnauthorized, `{"message":"invalid token"}`)
	pc := newTestPlacesClient(srv)

	body, err := pc.SearchNear(context.Background(), "coffee", "Fort Greene", "", "")
	require.Error(t, err)
	assert.Equal(t, nullPayload, body)
	assert.Contains(t, err.Error(), "401")
}

func TestPlaceFromLatLng(t *testing.T) {
	srv, recorded := newPlacesServer(t, http.StatusOK, `{"results":[{"name":"Fort Greene"}]}`)
	pc := newTestPlacesClient(srv)

	_, err := pc.PlaceFromLatLng(context.Background(), "40.69,-73.97")
	require.NoError(t, err)

	req := (*recorded)[0]
	assert.Equal(t, "/v3/places/nearby", req.path)
	assert.Equal(t, "40.69,-73.97", req.query["ll"])
	assert.Equal(t, "1", req.query["limit"])
	assert.Empty(t, req.header.Get("X-Places-Api-Version"))
}

func TestPlaceDetails(t *testing.T) {
	srv, recorded := newPlacesServer(t, http.StatusOK, `{"rating":9.2}`)
	pc := newTestPlacesClient(srv)

	body, err := pc.PlaceDetails(context.Background(), "4bf58dd8")
	require.NoError(t, err)
	assert.Equal(t, `{"rating":9.2}`, body)

	req := (*recorded)[0]
	assert.Equal(t, "/v3/places/4bf58dd8", req.path)
	assert.Equal(t, detailFields, req.query["fields"])
}

func TestPlacesClient_Register(t *testing.T) {
	srv, recorded := newPlacesServer(t, http.StatusOK, `{"results":[]}`)
	pc := newTestPlacesClient(srv)

	reg := NewRegistry()
	require.NoError(t, pc.Register(reg))
	assert.Equal(t, 3, reg.Count())

	// The published schema carries a description for the group, not just a
	// name.
	groups := reg.ActionGroups()
	require.Len(t, groups, 1)
	assert.Equal(t, placesActionGroup, groups[0].Name)
	assert.NotEmpty(t, groups[0].Description)

	// Registering twice must trip the duplicate check.
	assert.ErrorIs(t, pc.Register(reg), ErrDuplicateTool)

	res, err := reg.Invoke(context.Background(), "search_near",
		map[string]string{"what": "coffee", "where": "Fort Greene"})
	require.NoError(t, err)
	assert.True(t, res.OK())
	require.Len(t, *recorded, 1)
	assert.Equal(t, "Fort Greene", (*recorded)[0].query["near"])
}
