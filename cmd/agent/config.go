package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultInstruction is the agent instruction used when agent.yaml does not
// provide one. The place-tag annotation contract here is what the UI's map
// view depends on.
const defaultInstruction = `You are a helpful location aware agent.
You search for things to do based on the context provided through the input.
Always use the tools provided along with the context to provide the best answers to the human's questions.
When your final answer mentions a specific place returned by a tool, annotate it inline as
<place id="FSQ_PLACE_ID" lat=LATITUDE lng=LONGITUDE>PLACE NAME</place> so it can be shown on a map.`

const (
	defaultModelID = "us.amazon.nova-pro-v1:0"
	defaultRegion  = "us-west-2"
	defaultRadius  = "100"
	defaultPort    = "8080"
)

// AppConfig holds all configuration for the gateway, loaded from the
// environment and an optional agent.yaml.
type AppConfig struct {
	Port      string
	AWSRegion string
	ModelID   string
	// Instruction is the system instruction sent on every agent call.
	Instruction string
	// ServiceToken is the Foursquare bearer token. Absence is not validated
	// here; requests proceed and fail at the HTTP layer if it is missing.
	ServiceToken string
	// WeatherContact identifies this deployment to weather.gov; the API
	// requires a contact address in the User-Agent header.
	WeatherContact string
	// RedisAddr enables the downstream response cache when set.
	RedisAddr string
	// DefaultRadius seeds the radius session attribute (meters).
	DefaultRadius string
	// ActionGroupDescriptions overrides the description published for an
	// action group in the schema sent to the agent, keyed by group name.
	ActionGroupDescriptions map[string]string
}

// agentFileConfig is the optional YAML overlay for the agent persona.
type agentFileConfig struct {
	Instruction  string            `yaml:"instruction"`
	ModelID      string            `yaml:"model_id"`
	ActionGroups map[string]string `yaml:"action_groups"`
}

// LoadConfig loads configuration from a .env file (local development only),
// environment variables, and an optional agent.yaml.
func LoadConfig() (*AppConfig, error) {
	// In release mode configuration is provided directly as environment
	// variables; only local development reads a .env file.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		Port:           getEnv("PORT", defaultPort),
		AWSRegion:      getEnv("AWS_REGION", defaultRegion),
		ModelID:        getEnv("AGENT_MODEL_ID", defaultModelID),
		Instruction:    defaultInstruction,
		ServiceToken:   os.Getenv("FOURSQUARE_SERVICE_TOKEN"),
		WeatherContact: os.Getenv("WEATHER_API_EMAIL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		DefaultRadius:  getEnv("DEFAULT_RADIUS", defaultRadius),
	}

	// The persona file is optional; a missing file is fine, a malformed one
	// is a startup error.
	path := getEnv("AGENT_CONFIG_FILE", "agent.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return cfg, nil
	}
	var fileCfg agentFileConfig
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if fileCfg.Instruction != "" {
		cfg.Instruction = fileCfg.Instruction
	}
	if fileCfg.ModelID != "" {
		cfg.ModelID = fileCfg.ModelID
	}
	cfg.ActionGroupDescriptions = fileCfg.ActionGroups
	return cfg, nil
}

// getEnv reads an env var or returns a default.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
