package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(_ context.Context, args map[string]string) (string, error) {
	return fmt.Sprintf("%v", args), nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	defs := []Definition{
		{
			Name:        "search_near",
			ActionGroup: "LocationActions",
			Description: "search places",
			Parameters: []Parameter{
				{Name: "what", Type: TypeString, Required: true},
				{Name: "where", Type: TypeString},
				{Name: "radius", Type: TypeInteger},
			},
		},
		{
			Name:        "get_weather",
			ActionGroup: "WeatherActions",
			Description: "weather forecast",
			Parameters: []Parameter{
				{Name: "lat", Type: TypeNumber, Required: true},
				{Name: "lng", Type: TypeNumber, Required: true},
			},
		},
		{
			Name:        "get_location",
			ActionGroup: "LocationActions",
			Description: "geoip lookup",
		},
	}
	for _, def := range defs {
		require.NoError(t, reg.Register(def, echoHandler))
	}
	return reg
}

func TestRegister_DuplicateName(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Register(Definition{Name: "search_near"}, echoHandler)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTool)
	assert.Equal(t, 3, reg.Count())
}

func TestRegister_RejectsBadDefinitions(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register(Definition{}, echoHandler), "empty name")
	assert.Error(t, reg.Register(Definition{Name: "x"}, nil), "nil handler")
	assert.Error(t, reg.Register(Definition{
		Name:       "y",
		Parameters: []Parameter{{Name: "p", Type: "datetime"}},
	}, echoHandler), "unsupported parameter type")
	assert.Equal(t, 0, reg.Count())
}

func TestDefinitions_RegistrationOrderAndRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)

	defs := reg.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "search_near", defs[0].Name)
	assert.Equal(t, "get_weather", defs[1].Name)
	assert.Equal(t, "get_location", defs[2].Name)

	// Every listed definition is independently retrievable by name.
	for _, def := range defs {
		got, err := reg.SchemaFor(def.Name)
		require.NoError(t, err)
		assert.Equal(t, def, got)
	}
}

func TestSchemaFor_Unknown(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.SchemaFor("teleport")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestActionGroups_DeterministicOrder(t *testing.T) {
	reg := newTestRegistry(t)

	groups := reg.ActionGroups()
	require.Len(t, groups, 2)

	// Groups in first-seen order, functions in registration order.
	assert.Equal(t, "LocationActions", groups[0].Name)
	require.Len(t, groups[0].Functions, 2)
	assert.Equal(t, "search_near", groups[0].Functions[0].Name)
	assert.Equal(t, "get_location", groups[0].Functions[1].Name)

	assert.Equal(t, "WeatherActions", groups[1].Name)
	require.Len(t, groups[1].Functions, 1)
	assert.Equal(t, "get_weather", groups[1].Functions[0].Name)

	params := groups[1].Functions[0].Parameters
	require.Contains(t, params, "lat")
	assert.Equal(t, TypeNumber, params["lat"].Type)
	assert.True(t, params["lat"].Required)
}

func TestActionGroups_Descriptions(t *testing.T) {
	reg := newTestRegistry(t)
	reg.DescribeGroup("LocationActions", "Tools for retrieving location.")

	groups := reg.ActionGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Tools for retrieving location.", groups[0].Description)
	assert.Empty(t, groups[1].Description, "undescribed groups stay empty")

	// A later description wins, so configuration can override an adapter's
	// built-in text.
	reg.DescribeGroup("LocationActions", "Overridden.")
	assert.Equal(t, "Overridden.", reg.ActionGroups()[0].Description)
}

func TestInvoke_UnknownTool(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Invoke(context.Background(), "teleport", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestInvoke_MissingRequiredArgument(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Invoke(context.Background(), "search_near", map[string]string{"where": "Seattle"})

	var missing *MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "search_near", missing.Tool)
	assert.Equal(t, "what", missing.Parameter)
}

func TestInvoke_ArgumentTypeChecked(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Invoke(context.Background(), "get_weather",
		map[string]string{"lat": "40.7", "lng": "far away"})

	var typeErr *ArgumentTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "lng", typeErr.Parameter)
	assert.Equal(t, TypeNumber, typeErr.WantType)
}

func TestInvoke_OptionalArgumentsMayBeOmitted(t *testing.T) {
	reg := newTestRegistry(t)
	res, err := reg.Invoke(context.Background(), "search_near", map[string]string{"what": "coffee"})
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestInvoke_IntegerCoercion(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Invoke(context.Background(), "search_near",
		map[string]string{"what": "coffee", "radius": "100"})
	assert.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "search_near",
		map[string]string{"what": "coffee", "radius": "wide"})
	var typeErr *ArgumentTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestInvoke_HandlerErrorBecomesResultError(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "flaky"},
		func(context.Context, map[string]string) (string, error) {
			return "", errors.New("upstream exploded")
		}))

	res, err := reg.Invoke(context.Background(), "flaky", nil)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, "upstream exploded", res.Error)
	assert.Empty(t, res.Payload)
}

func TestInvoke_PanicCaptured(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "grenade"},
		func(context.Context, map[string]string) (string, error) {
			panic("pulled the pin")
		}))

	res, err := reg.Invoke(context.Background(), "grenade", nil)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Contains(t, res.Error, "pulled the pin")
}

func TestInvoke_Success(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{
		Name:       "greet",
		Parameters: []Parameter{{Name: "name", Type: TypeString, Required: true}},
	}, func(_ context.Context, args map[string]string) (string, error) {
		return "hello " + args["name"], nil
	}))

	res, err := reg.Invoke(context.Background(), "greet", map[string]string{"name": "world"})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "greet", res.Tool)
	assert.Equal(t, "hello world", res.Payload)
}
