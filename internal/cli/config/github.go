package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/shibaleo/repomcp/pkg/githubapi"
)

// GitHub holds the access token for the GitHub API. The token is read once
// at process start and never mutated afterwards.
type GitHub struct {
	token githubapi.Token `masq:"secret"`
}

func (x *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token",
			Category:    "GitHub",
			Destination: (*string)(&x.token),
			Sources:     cli.EnvVars("GITHUB_TOKEN"),
		},
	}
}

// New builds the GitHub API client. An absent or blank token is rejected
// here, before the server starts listening.
func (x GitHub) New(options ...githubapi.Option) (*githubapi.Client, error) {
	return githubapi.New(x.token, options...)
}

func (x GitHub) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("Token.len", len(x.token)),
	)
}
