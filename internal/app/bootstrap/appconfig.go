// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging, CORS); AppConfig is everything specific to BoardHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: boardhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Client preferences cookie (active project, sidebar order)
	PrefsKey string // Secret key for signing the board_prefs cookie

	// Redis pub/sub for cross-instance event fan-out (blank disables)
	RedisAddr     string // e.g., "localhost:6379"
	RedisPassword string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://boardhub.example")
	BaseURL string
}
