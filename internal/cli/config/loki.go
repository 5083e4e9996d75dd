package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/shibaleo/repomcp/internal/observability"
)

// Loki holds Grafana Loki push credentials for tool-call accounting.
// Accounting stays disabled unless all three values are set.
type Loki struct {
	url     string
	user    string
	apiKey  string `masq:"secret"`
	appName string
}

func (x *Loki) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "loki-url",
			Usage:       "Grafana Loki base URL",
			Category:    "Loki",
			Destination: &x.url,
			Sources:     cli.EnvVars("REPOMCP_LOKI_URL"),
		},
		&cli.StringFlag{
			Name:        "loki-user",
			Usage:       "Grafana Loki username",
			Category:    "Loki",
			Destination: &x.user,
			Sources:     cli.EnvVars("REPOMCP_LOKI_USER"),
		},
		&cli.StringFlag{
			Name:        "loki-api-key",
			Usage:       "Grafana Loki API key",
			Category:    "Loki",
			Destination: &x.apiKey,
			Sources:     cli.EnvVars("REPOMCP_LOKI_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "loki-app-name",
			Usage:       "Application label attached to pushed records",
			Category:    "Loki",
			Destination: &x.appName,
			Sources:     cli.EnvVars("REPOMCP_LOKI_APP_NAME"),
			Value:       "repomcp",
		},
	}
}

func (x *Loki) Configure() {
	observability.Init(x.url, x.user, x.apiKey, x.appName)
}

func (x Loki) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("URL", x.url),
		slog.String("User", x.user),
		slog.Int("APIKey.len", len(x.apiKey)),
		slog.String("AppName", x.appName),
	)
}
