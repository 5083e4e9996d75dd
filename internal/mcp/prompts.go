package mcp

import "fmt"

// greetingStyles maps a requested style to its instruction. Unknown styles
// fall back to friendly.
var greetingStyles = map[string]string{
	"friendly": "Please write a warm, friendly greeting",
	"formal":   "Please write a formal, professional greeting",
	"casual":   "Please write a casual, relaxed greeting",
}

var promptDefinitions = []PromptInfo{
	{
		Name:        "greet_user",
		Title:       "Greet User",
		Description: "Generate a greeting prompt",
		Arguments: []PromptArgument{
			{Name: "name", Description: "Name of the person to greet", Required: true},
			{Name: "style", Description: "Greeting style: friendly, formal, or casual (default friendly)"},
		},
	},
}

// renderGreetUser builds the greet_user prompt text
func renderGreetUser(name, style string) string {
	instruction, ok := greetingStyles[style]
	if !ok {
		instruction = greetingStyles["friendly"]
	}
	return fmt.Sprintf("%s for someone named %s.", instruction, name)
}
