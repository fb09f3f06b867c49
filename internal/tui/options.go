package tui

import "strings"

// Option configures a Model.
type Option func(*Model)

// WithVersion sets the version shown in the trailer and version banner.
func WithVersion(version string) Option {
	return func(m *Model) {
		if v := strings.TrimSpace(version); v != "" {
			m.version = v
		}
	}
}

// WithProjectWidth sets the project list width. Non-positive values keep the default.
func WithProjectWidth(width int) Option {
	return func(m *Model) {
		if width > 0 {
			m.projectWidth = width
		}
	}
}

// WithKeyConfig applies key overrides.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithClipboard replaces the clipboard writer used by the copy action.
func WithClipboard(copyText func(string) error) Option {
	return func(m *Model) {
		if copyText != nil {
			m.copyText = copyText
		}
	}
}
