// Package github exposes repository administration tools backed by the
// GitHub REST API.
package github

import (
	"context"
	"strconv"

	"github.com/m-mizutani/goerr/v2"

	"github.com/shibaleo/repomcp/internal/modules"
	"github.com/shibaleo/repomcp/pkg/githubapi"
)

const githubAPIVersion = "2022-11-28"

// repoService is the slice of the GitHub client this module needs.
// Satisfied by *githubapi.Client; tests supply a hand-rolled mock.
type repoService interface {
	ListRepositories(ctx context.Context) ([]githubapi.Repository, error)
	ListForkedRepositories(ctx context.Context) ([]githubapi.Repository, error)
	ListArchivedRepositories(ctx context.Context) ([]githubapi.Repository, error)
	UpdateRepository(ctx context.Context, owner, name string, update githubapi.RepoUpdate) (int, error)
}

// Module implements the modules.Module interface for GitHub repository
// administration.
type Module struct {
	svc      repoService
	handlers map[string]toolHandler
}

// New creates a Module backed by the given repository service
func New(svc repoService) *Module {
	m := &Module{svc: svc}
	m.handlers = map[string]toolHandler{
		"get_repos":          m.getRepos,
		"get_forked_repos":   m.getForkedRepos,
		"get_archived_repos": m.getArchivedRepos,
		"update_repo":        m.updateRepo,
		"make_repo_private":  m.makeRepoPrivate,
		"archive_repo":       m.archiveRepo,
		"unarchive_repo":     m.unarchiveRepo,
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string {
	return "github"
}

// Description returns the module description
func (m *Module) Description() string {
	return "GitHub API - list, filter, archive, and update repositories of the authenticated user"
}

// APIVersion returns the GitHub API version the module targets
func (m *Module) APIVersion() string {
	return githubAPIVersion
}

// Tools returns all available tools
func (m *Module) Tools() []modules.Tool {
	return toolDefinitions
}

// ExecuteTool executes a tool by name and returns its text response
func (m *Module) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	handler, ok := m.handlers[name]
	if !ok {
		return "", goerr.New("unknown tool", goerr.V("tool", name))
	}
	return handler(ctx, params)
}

// ToCompact converts JSON results to compact format.
// Implements modules.CompactConverter.
func (m *Module) ToCompact(toolName string, jsonResult string) string {
	return formatCompact(toolName, jsonResult)
}

// =============================================================================
// Tool Definitions
// =============================================================================

var ownerRepoSchema = modules.InputSchema{
	Type: "object",
	Properties: map[string]modules.Property{
		"owner": {Type: "string", Description: "GitHub username or organization that owns the repository"},
		"repo":  {Type: "string", Description: "Repository name"},
	},
	Required: []string{"owner", "repo"},
}

var listSchema = modules.InputSchema{
	Type: "object",
	Properties: map[string]modules.Property{
		"format": {Type: "string", Description: `Output format: "csv" (default) or "json"`},
	},
}

var toolDefinitions = []modules.Tool{
	{
		Name: "get_repos",
		Description: "Fetches a list of all repositories owned by the authenticated GitHub user, " +
			"sorted by creation time ascending.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: listSchema,
	},
	{
		Name:        "get_forked_repos",
		Description: "Fetches a list of forked repositories owned by the authenticated GitHub user.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: listSchema,
	},
	{
		Name:        "get_archived_repos",
		Description: "Fetches a list of archived repositories owned by the authenticated GitHub user.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: listSchema,
	},
	{
		Name: "update_repo",
		Description: "Updates attributes of a GitHub repository (name, description, visibility, archived). " +
			"Returns the HTTP status code of the update request.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"owner": {Type: "string", Description: "GitHub username or organization that owns the repository"},
				"repo":  {Type: "string", Description: "Repository name"},
				"data":  {Type: "object", Description: `Attributes to update, e.g. {"visibility":"private"} or {"archived":true}`},
			},
			Required: []string{"owner", "repo", "data"},
		},
	},
	{
		Name: "make_repo_private",
		Description: "Sets a GitHub repository's visibility to private. " +
			"Returns the HTTP status code of the update request.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: ownerRepoSchema,
	},
	{
		Name: "archive_repo",
		Description: "Archives a GitHub repository, making it read-only. " +
			"Returns the HTTP status code of the update request.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: ownerRepoSchema,
	},
	{
		Name: "unarchive_repo",
		Description: "Unarchives a previously archived GitHub repository. " +
			"Returns the HTTP status code of the update request.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: ownerRepoSchema,
	},
}

// =============================================================================
// Tool Handlers
// =============================================================================

type toolHandler func(ctx context.Context, params map[string]any) (string, error)

var toJSON = modules.ToJSON

func (m *Module) getRepos(ctx context.Context, params map[string]any) (string, error) {
	repos, err := m.svc.ListRepositories(ctx)
	if err != nil {
		return "", err
	}
	return toJSON(repos)
}

func (m *Module) getForkedRepos(ctx context.Context, params map[string]any) (string, error) {
	repos, err := m.svc.ListForkedRepositories(ctx)
	if err != nil {
		return "", err
	}
	return toJSON(repos)
}

func (m *Module) getArchivedRepos(ctx context.Context, params map[string]any) (string, error) {
	repos, err := m.svc.ListArchivedRepositories(ctx)
	if err != nil {
		return "", err
	}
	return toJSON(repos)
}

func (m *Module) updateRepo(ctx context.Context, params map[string]any) (string, error) {
	owner, _ := params["owner"].(string)
	repo, _ := params["repo"].(string)
	data, _ := params["data"].(map[string]any)

	update, err := githubapi.ParseRepoUpdate(data)
	if err != nil {
		return "", err
	}

	return m.update(ctx, owner, repo, update)
}

func (m *Module) makeRepoPrivate(ctx context.Context, params map[string]any) (string, error) {
	owner, _ := params["owner"].(string)
	repo, _ := params["repo"].(string)

	private := "private"
	return m.update(ctx, owner, repo, githubapi.RepoUpdate{Visibility: &private})
}

func (m *Module) archiveRepo(ctx context.Context, params map[string]any) (string, error) {
	owner, _ := params["owner"].(string)
	repo, _ := params["repo"].(string)

	archived := true
	return m.update(ctx, owner, repo, githubapi.RepoUpdate{Archived: &archived})
}

func (m *Module) unarchiveRepo(ctx context.Context, params map[string]any) (string, error) {
	owner, _ := params["owner"].(string)
	repo, _ := params["repo"].(string)

	archived := false
	return m.update(ctx, owner, repo, githubapi.RepoUpdate{Archived: &archived})
}

// update issues the change and renders the raw status code as the tool
// output. Non-2xx codes are results, not errors; the caller interprets them.
func (m *Module) update(ctx context.Context, owner, repo string, upd githubapi.RepoUpdate) (string, error) {
	status, err := m.svc.UpdateRepository(ctx, owner, repo, upd)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(status), nil
}
