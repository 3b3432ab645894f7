package config

import "os"

// Config holds server configuration sourced from the environment.
type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string

	// StatsAPIBaseURL is the base address of the backend stats API.
	// When empty, all stats-backed widgets are disabled rather than failing.
	StatsAPIBaseURL string
}

// FromEnv reads configuration from environment variables, applying defaults.
func FromEnv() Config {
	return Config{
		Port:            getEnv("PORT", "7521"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGODB_DB", "erpdash"),
		JWTSecret:       os.Getenv("AUTH_JWT_SECRET"),
		StatsAPIBaseURL: os.Getenv("STATS_API_BASE_URL"),
	}
}

// StatsEnabled reports whether the optional stats backend is configured.
func (c Config) StatsEnabled() bool {
	return c.StatsAPIBaseURL != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
