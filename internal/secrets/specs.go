package secrets

// KeySpec defines how to resolve a specific secret.
type KeySpec struct {
	// EnvVars lists environment variables to check, in priority order.
	EnvVars []string

	// Desc is a human-readable description for error messages and CLI display.
	Desc string

	// Provider is the generation backend this key unlocks.
	Provider string
}

// knownKeys maps secret names to their resolution specs.
var knownKeys = map[string]KeySpec{
	"google_api_key": {
		EnvVars:  []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		Desc:     "Google API key for Gemini",
		Provider: "gemini",
	},
	"anthropic_api_key": {
		EnvVars:  []string{"ANTHROPIC_API_KEY"},
		Desc:     "Anthropic API key for Claude",
		Provider: "claude",
	},
}

// KeyForProvider returns the secret name holding the API key for a provider.
// Returns false for unknown providers.
func KeyForProvider(provider string) (string, bool) {
	for name, spec := range knownKeys {
		if spec.Provider == provider {
			return name, true
		}
	}
	return "", false
}
