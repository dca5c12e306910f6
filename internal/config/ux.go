package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light", "dark" or "auto" (detect from the terminal).
	Theme string `yaml:"theme"`
}

// IsDark resolves the theme preference; auto defers to detect.
func (u UIConfig) IsDark(detect func() bool) bool {
	switch u.Theme {
	case "dark":
		return true
	case "light":
		return false
	default:
		return detect != nil && detect()
	}
}
