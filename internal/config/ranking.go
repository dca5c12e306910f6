package config

// Ranking providers.
const (
	ProviderNone   = "none"   // ranking disabled
	ProviderLocal  = "local"  // deterministic, offline
	ProviderOpenAI = "openai" // OpenAI-compatible chat completions
	ProviderGemini = "gemini" // Google GenAI
)

// ValidProviders lists all supported ranking providers.
var ValidProviders = []string{ProviderNone, ProviderLocal, ProviderOpenAI, ProviderGemini}

// RankingConfig configures the optional ranking collaborator.
type RankingConfig struct {
	Provider string `yaml:"provider"` // none, local, openai, gemini
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  string `yaml:"timeout"`
}

// NeedsAPIKey reports whether the provider is a remote service.
func (r RankingConfig) NeedsAPIKey() bool {
	return r.Provider == ProviderOpenAI || r.Provider == ProviderGemini
}

// Enabled reports whether any ranking should be attempted.
func (r RankingConfig) Enabled() bool {
	return r.Provider != "" && r.Provider != ProviderNone
}

func isValidProvider(p string) bool {
	for _, v := range ValidProviders {
		if p == v {
			return true
		}
	}
	return false
}
