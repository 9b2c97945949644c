package configuration

import (
	"fmt"
	"os"
	"strings"
)

// YouTubeConfig is the application-level OAuth client used to mint per-user
// YouTube credentials. Per-user tokens live in the database, not here.
type YouTubeConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// GetYouTubeConfig returns YouTube configuration from the JSON config with
// environment variable fallback.
func GetYouTubeConfig() (*YouTubeConfig, error) {
	scheme := "http"
	if C.App.TLSEnabled {
		scheme = "https"
	}
	port := C.App.Port
	if port == 0 {
		port = 10001
	}
	defaultRedirect := fmt.Sprintf("%s://localhost:%d/auth/youtube/callback", scheme, port)
	config := &YouTubeConfig{
		ClientID:     getConfigValue(C.YouTube.ClientID, "YOUTUBE_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", ""),
		RedirectURL:  getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", defaultRedirect),
	}

	// Missing credentials are not fatal; the engine runs in local fallback
	// mode until a client id and secret are provided.
	return config, nil
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
