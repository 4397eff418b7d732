// Package config loads service configuration from the environment, with a
// .env file picked up when present.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// ValidCities is the fixed set of cities a product can be registered in.
var ValidCities = []string{"Vilnius", "Kaunas", "Klaipėda", "Šiauliai", "Panevėžys"}

// AuthHeaderName is the legacy token header accepted next to Authorization.
const AuthHeaderName = "X-Auth-Token"

// Config holds all runtime settings.
type Config struct {
	MongoURI string
	MongoDB  string
	Port     string

	JWTSecret   string
	TokenExpiry time.Duration

	AdminPassword      string
	TechnicianPassword string
	CustomerPassword   string

	FrontendURL string

	MQTTBrokerURL   string
	MQTTTopicPrefix string
}

// Load reads configuration from the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:           getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getenv("MONGO_DB", "stretcher_service"),
		Port:               getenv("PORT", "8080"),
		JWTSecret:          getenv("JWT_SECRET", "default-secret-key-change-in-production"),
		TokenExpiry:        getDuration("TOKEN_EXPIRY", 7*24*time.Hour),
		AdminPassword:      getenv("ADMIN_PASSWORD", "admin2025"),
		TechnicianPassword: getenv("TECHNICIAN_PASSWORD", "service2025"),
		CustomerPassword:   getenv("CUSTOMER_PASSWORD", "customer2025"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:3000"),
		MQTTBrokerURL:      os.Getenv("MQTT_BROKER_URL"),
		MQTTTopicPrefix:    getenv("MQTT_TOPIC_PREFIX", "stretcher-service"),
	}
}

// IsValidCity reports whether city belongs to the fixed city set.
func IsValidCity(city string) bool {
	for _, c := range ValidCities {
		if c == city {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
