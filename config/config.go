package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Categories are the four plan categories a Stripe price ID can map to.
var Categories = []string{"FOREX", "CRYPTO", "INDICES", "STOCK"}

// Config holds all configuration for the application
type Config struct {
	// Stripe configs
	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string

	// Category name -> Stripe price ID
	PriceIDs map[string]string

	// Record store configs
	MongoURL string
	MongoDB  string

	// Asset directories
	StaticDir string
	HTMLDir   string

	// Broadcast message, shown to clients older than Version
	Version int
	Message string

	// Server configs
	Port        string
	Environment string

	CorsAllowedOrigins []string
}

// requiredVars maps each required environment variable to the remediation
// hint printed when it is missing.
var requiredVars = []struct {
	name string
	hint string
}{
	{"STRIPE_SECRET_KEY", "Add STRIPE_SECRET_KEY to your .env file."},
	{"STRIPE_PUBLISHABLE_KEY", "Add STRIPE_PUBLISHABLE_KEY to your .env file."},
	{"STRIPE_WEBHOOK_SECRET", "Add STRIPE_WEBHOOK_SECRET to your .env file. See the Stripe dashboard webhook settings."},
	{"FOREX", "Add the Forex price ID to your .env file. See the readme for setup instructions."},
	{"CRYPTO", "Add the Crypto price ID to your .env file. See the readme for setup instructions."},
	{"INDICES", "Add the Indices price ID to your .env file. See the readme for setup instructions."},
	{"STOCK", "Add the Stock price ID to your .env file. See the readme for setup instructions."},
	{"STATIC_DIR", "Add STATIC_DIR to your .env file. Check .env.example for an example."},
	{"HTML_DIR", "Add HTML_DIR to your .env file. Check .env.example for an example."},
	{"MONGO_URL", "Add MONGO_URL to your .env file."},
	{"MONGO_DB", "Add MONGO_DB to your .env file."},
}

// Load initializes configuration from environment variables and the .env
// file. Every missing required variable gets its own remediation hint before
// the process refuses to start.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	var missing []string
	for _, v := range requiredVars {
		if os.Getenv(v.name) == "" {
			missing = append(missing, v.hint)
		}
	}
	if len(missing) > 0 {
		log.Error().Msg("The environment is not configured. Follow the instructions in the readme to configure the .env file.")
		for _, hint := range missing {
			log.Error().Msg(hint)
		}
		os.Exit(1)
	}

	config := &Config{
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PriceIDs: map[string]string{
			"FOREX":   os.Getenv("FOREX"),
			"CRYPTO":  os.Getenv("CRYPTO"),
			"INDICES": os.Getenv("INDICES"),
			"STOCK":   os.Getenv("STOCK"),
		},
		MongoURL:    os.Getenv("MONGO_URL"),
		MongoDB:     os.Getenv("MONGO_DB"),
		StaticDir:   os.Getenv("STATIC_DIR"),
		HTMLDir:     os.Getenv("HTML_DIR"),
		Message:     getEnv("MESSAGE", ""),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	version, err := strconv.Atoi(getEnv("VERSION", "0"))
	if err != nil {
		log.Fatal().Err(err).Msg("VERSION must be an integer")
	}
	config.Version = version

	// Parse CORS allowed origins
	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "")
	if corsOrigins != "" {
		config.CorsAllowedOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.CorsAllowedOrigins = []string{"*"}
	}

	return config
}

// PriceID resolves a category name to its configured Stripe price ID.
func (c *Config) PriceID(category string) (string, bool) {
	id, ok := c.PriceIDs[category]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Category resolves a Stripe price ID back to its category name. A price
// that matches none of the four configured IDs yields nil, not an error.
func (c *Config) Category(priceID string) *string {
	for _, cat := range Categories {
		if c.PriceIDs[cat] != "" && c.PriceIDs[cat] == priceID {
			category := cat
			return &category
		}
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
