package diffcard

import "fmt"

// Config holds user preferences for presenting diffs.
type Config struct {
	ViewMode        ViewMode `yaml:"view_mode"`
	ShowLineNumbers bool     `yaml:"show_line_numbers"`
	WrapLines       bool     `yaml:"wrap_lines"`
	MaxHeight       int      `yaml:"max_height"`
	Theme           string   `yaml:"theme"`        // "default" or "test"
	DenyActions     []string `yaml:"deny_actions"` // Action ids the host gate refuses
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		ViewMode:        ViewUnified,
		ShowLineNumbers: true,
		Theme:           "default",
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch c.ViewMode {
	case ViewUnified, ViewSplit:
	default:
		return fmt.Errorf("view_mode must be %q or %q, got %q", ViewUnified, ViewSplit, c.ViewMode)
	}
	if c.MaxHeight < 0 {
		return fmt.Errorf("max_height must be >= 0, got %d", c.MaxHeight)
	}
	switch c.Theme {
	case "default", "test":
	default:
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	return nil
}

// Options converts the configuration into presentation options.
func (c Config) Options() Options {
	return Options{
		ViewMode:        c.ViewMode,
		ShowLineNumbers: c.ShowLineNumbers,
		WrapLines:       c.WrapLines,
		MaxHeight:       c.MaxHeight,
	}
}

// Denies reports whether the action id is on the deny list.
func (c Config) Denies(actionID string) bool {
	for _, id := range c.DenyActions {
		if id == actionID {
			return true
		}
	}
	return false
}
