package tui

import (
	"context"
	"strings"

	"github.com/hylla/tavla/internal/app"
)

type Option func(*Model)

// WithContext sets the context passed to store calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithColumnTitles overrides display titles. Blank entries keep the default.
func WithColumnTitles(titles [3]string) Option {
	return func(m *Model) {
		for idx, title := range titles {
			if title = strings.TrimSpace(title); title != "" {
				m.titles[idx] = title
			}
		}
	}
}

func WithRenderMarkdown(enabled bool) Option {
	return func(m *Model) {
		m.renderMarkdown = enabled
	}
}

func WithConfirmDelete(enabled bool) Option {
	return func(m *Model) {
		m.confirmDelete = enabled
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithClipboard replaces the function used to copy task text.
func WithClipboard(copyFn func(string) error) Option {
	return func(m *Model) {
		if copyFn != nil {
			m.copyText = copyFn
		}
	}
}

// WithLoadReporter registers a callback invoked after every load or reload.
func WithLoadReporter(fn func(app.LoadReport)) Option {
	return func(m *Model) {
		m.onLoad = fn
	}
}
