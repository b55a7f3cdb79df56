package generation

import (
	"log"
	"os"
	"time"
)

const (
	// EnvDevteamMode is the environment variable name for mode selection.
	EnvDevteamMode = "DEVTEAM_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewClient creates a generation client based on the DEVTEAM_MODE
// environment variable. If DEVTEAM_MODE=MOCK, returns a MockClient;
// otherwise returns a real HTTPClient.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) Client {
	if os.Getenv(EnvDevteamMode) == ModeMock {
		log.Println("DEVTEAM_MODE=MOCK detected, using mock generation client")
		return NewMockClient()
	}
	return NewHTTPClient(baseURL, apiKey, model, timeout)
}
