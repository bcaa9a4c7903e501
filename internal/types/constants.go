package types

import (
	"os"
	"strings"
)

// ContextUserKey is where the auth middleware stores the session claims.
const ContextUserKey = "user"

// devOrigins are the local CRM frontend ports (CRA and Vite).
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// AllowedOrigins is the CORS allow-list: the dev origins plus the deployed
// client from CLIENT_URL and any extra comma-separated ALLOWED_ORIGINS.
var AllowedOrigins = buildAllowedOrigins()

func buildAllowedOrigins() []string {
	origins := append([]string{}, devOrigins...)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
