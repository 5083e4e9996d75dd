package githubapi

import (
	"fmt"
	"log/slog"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
)

// Token is a GitHub personal access token. The value masks itself when
// logged or formatted.
type Token string

func (x Token) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x Token) String() string {
	return "***********"
}

var (
	// ErrNoToken means the client was constructed without a usable access token.
	ErrNoToken = goerr.New("github token is not set")

	// ErrMalformedRepo means a listing item lacked a field the normalized
	// record requires.
	ErrMalformedRepo = goerr.New("malformed repository record")

	// ErrInvalidUpdate means an update payload carried an unknown key or a
	// wrongly typed value.
	ErrInvalidUpdate = goerr.New("invalid repository update")
)

// Repository is the normalized record handed to callers. Description is the
// only optional field; all others must be present in the raw response or the
// listing call fails as a whole.
type Repository struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Visibility  string  `json:"visibility"`
	Fork        bool    `json:"fork"`
	Archived    bool    `json:"archived"`
}

func toRepository(r *github.Repository) (Repository, error) {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.HTMLURL == nil {
		missing = append(missing, "html_url")
	}
	if r.Fork == nil {
		missing = append(missing, "fork")
	}
	if r.Archived == nil {
		missing = append(missing, "archived")
	}
	if len(missing) > 0 {
		return Repository{}, goerr.Wrap(ErrMalformedRepo, "required fields missing",
			goerr.V("repo", r.GetName()),
			goerr.V("fields", missing),
		)
	}

	// GitHub omits visibility from list responses under some token scopes.
	// Absence is treated as public, GitHub's default for the field.
	visibility := "public"
	if r.Visibility != nil {
		visibility = r.GetVisibility()
	}

	return Repository{
		Name:        r.GetName(),
		Description: r.Description,
		URL:         r.GetHTMLURL(),
		Visibility:  visibility,
		Fork:        r.GetFork(),
		Archived:    r.GetArchived(),
	}, nil
}

// RepoUpdate is a partial change to repository settings. Nil fields are left
// untouched on the remote side.
type RepoUpdate struct {
	Name        *string
	Description *string
	Visibility  *string
	Archived    *bool
}

// ParseRepoUpdate converts an untyped argument object into a RepoUpdate.
// Unknown keys and wrongly typed values are rejected before any request is
// built.
func ParseRepoUpdate(data map[string]any) (RepoUpdate, error) {
	var upd RepoUpdate
	for key, raw := range data {
		switch key {
		case "name":
			s, ok := raw.(string)
			if !ok {
				return RepoUpdate{}, wrongFieldType(key, "string", raw)
			}
			upd.Name = &s

		case "description":
			s, ok := raw.(string)
			if !ok {
				return RepoUpdate{}, wrongFieldType(key, "string", raw)
			}
			upd.Description = &s

		case "visibility":
			s, ok := raw.(string)
			if !ok {
				return RepoUpdate{}, wrongFieldType(key, "string", raw)
			}
			if s != "public" && s != "private" {
				return RepoUpdate{}, goerr.Wrap(ErrInvalidUpdate, "visibility must be public or private",
					goerr.V("value", s),
				)
			}
			upd.Visibility = &s

		case "archived":
			b, ok := raw.(bool)
			if !ok {
				return RepoUpdate{}, wrongFieldType(key, "boolean", raw)
			}
			upd.Archived = &b

		default:
			return RepoUpdate{}, goerr.Wrap(ErrInvalidUpdate, "unknown field",
				goerr.V("field", key),
			)
		}
	}

	return upd, nil
}

func wrongFieldType(key, want string, got any) error {
	return goerr.Wrap(ErrInvalidUpdate, "field has wrong type",
		goerr.V("field", key),
		goerr.V("want", want),
		goerr.V("got", fmt.Sprintf("%T", got)),
	)
}

func (u RepoUpdate) toRequest() *github.Repository {
	return &github.Repository{
		Name:        u.Name,
		Description: u.Description,
		Visibility:  u.Visibility,
		Archived:    u.Archived,
	}
}
