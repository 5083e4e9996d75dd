package github

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Compact formatters per tool — pure transformation: (toolName, JSON) → string
// =============================================================================

func formatCompact(toolName, jsonStr string) string {
	switch toolName {
	case "get_repos", "get_forked_repos", "get_archived_repos":
		return reposToCSV(jsonStr)
	// Update tools already return bare status digits
	default:
		return jsonStr
	}
}

// reposToCSV: name,visibility,fork,archived,description
func reposToCSV(jsonStr string) string {
	var repos []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &repos); err != nil {
		return jsonStr
	}
	if len(repos) == 0 {
		return "# 0 repos"
	}
	var sb strings.Builder
	sb.WriteString("```csv\nname,visibility,fork,archived,description\n")
	for _, r := range repos {
		desc := str(r, "description")
		if len(desc) > 80 {
			desc = desc[:80] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%v,%v,%s\n",
			csvEscape(str(r, "name")),
			str(r, "visibility"),
			boolVal(r, "fork"),
			boolVal(r, "archived"),
			csvEscape(desc),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// =============================================================================
// Helpers
// =============================================================================

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolVal(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
