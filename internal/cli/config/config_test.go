package config_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/shibaleo/repomcp/internal/cli/config"
	"github.com/shibaleo/repomcp/pkg/githubapi"
)

func TestGitHubFlags(t *testing.T) {
	githubConfig := &config.GitHub{}
	flags := githubConfig.Flags()

	gt.V(t, len(flags)).Equal(1)
	gt.V(t, flags[0].Names()[0]).Equal("github-token")
}

func TestGitHubNewRejectsMissingToken(t *testing.T) {
	githubConfig := &config.GitHub{}

	_, err := githubConfig.New()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, githubapi.ErrNoToken))
}

func TestSentryFlags(t *testing.T) {
	sentryConfig := &config.Sentry{}
	flags := sentryConfig.Flags()

	gt.V(t, len(flags)).Equal(2)

	names := make(map[string]bool)
	for _, flag := range flags {
		names[flag.Names()[0]] = true
	}

	gt.True(t, names["sentry-dsn"])
	gt.True(t, names["sentry-env"])
}

func TestConfigLogValueByValue(t *testing.T) {
	// Configs are logged by value at startup; the slog resolver only sees
	// LogValue when the value type itself satisfies slog.LogValuer.
	tests := []struct {
		name string
		lv   slog.LogValuer
	}{
		{"github", config.GitHub{}},
		{"sentry", config.Sentry{}},
		{"loki", config.Loki{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, tt.lv.LogValue().Kind()).Equal(slog.KindGroup)
		})
	}
}

func TestLokiFlags(t *testing.T) {
	lokiConfig := &config.Loki{}
	flags := lokiConfig.Flags()

	gt.V(t, len(flags)).Equal(4)

	names := make(map[string]bool)
	for _, flag := range flags {
		names[flag.Names()[0]] = true
	}

	gt.True(t, names["loki-url"])
	gt.True(t, names["loki-user"])
	gt.True(t, names["loki-api-key"])
	gt.True(t, names["loki-app-name"])
}
