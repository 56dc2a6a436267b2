package config

import "slices"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged     bool
	NewLogLevel         LogLevel
	InstructionsChanged bool
	NewInstructions     string
	LanguagesChanged    bool
	NewLanguages        []string
}

// Any reports whether the diff contains at least one change.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.InstructionsChanged || d.LanguagesChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart; provider
// changes in particular require a new session.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Agent.Instructions != new.Agent.Instructions {
		d.InstructionsChanged = true
		d.NewInstructions = new.Agent.Instructions
	}
	if !slices.Equal(old.Transcript.Languages, new.Transcript.Languages) {
		d.LanguagesChanged = true
		d.NewLanguages = slices.Clone(new.Transcript.Languages)
	}

	return d
}
