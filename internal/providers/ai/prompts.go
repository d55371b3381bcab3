package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
)

// ChatHistoryLimit is how many prior messages a chat request carries
const ChatHistoryLimit = 5

const (
	systemCompletion = "You are an expert programmer. Always answer with JSON only."
	systemExplain    = "You are a patient programming teacher."
	systemOptimize   = "You are a code optimization expert."
	systemDebug      = "You are a debugging expert. Answer with JSON only."
	systemChat       = "You are a friendly coding assistant."
)

var (
	fenceMarkers = regexp.MustCompile("```json|```")
	firstBlock   = regexp.MustCompile("```(?:javascript|js)?\\n([\\s\\S]*?)\\n```")
	anyBlock     = regexp.MustCompile("```[\\s\\S]*?```")
)

func fenced(code string) string {
	return "```javascript\n" + code + "\n```"
}

func completionMessages(code string) []assistant.Message {
	if code == "" {
		code = "// empty"
	}
	prompt := fmt.Sprintf(`Analyse the code below and suggest three code completions. Each suggestion must be runnable code.

Current code:
%s

Respond with JSON only:
{
  "suggestions": [
    {"text": "code 1", "description": "description 1"},
    {"text": "code 2", "description": "description 2"},
    {"text": "code 3", "description": "description 3"}
  ]
}`, fenced(code))
	return []assistant.Message{
		{Role: assistant.RoleSystem, Content: systemCompletion},
		{Role: assistant.RoleUser, Content: prompt},
	}
}

func explainMessages(code string) []assistant.Message {
	return []assistant.Message{
		{Role: assistant.RoleSystem, Content: systemExplain},
		{Role: assistant.RoleUser, Content: "Explain the following code in detail so a beginner can follow it:\n\n" + fenced(code)},
	}
}

func optimizeMessages(code string) []assistant.Message {
	return []assistant.Message{
		{Role: assistant.RoleSystem, Content: systemOptimize},
		{Role: assistant.RoleUser, Content: "Optimize the following code and describe the improvements:\n\n" + fenced(code) +
			"\n\nProvide the optimized code and a list of improvements."},
	}
}

func debugMessages(code string) []assistant.Message {
	return []assistant.Message{
		{Role: assistant.RoleSystem, Content: systemDebug},
		{Role: assistant.RoleUser, Content: "Find bugs or problems in the following code and report them as JSON:\n\n" + fenced(code) +
			"\n\nFormat:\n{\"issues\": [{\"line\": number, \"severity\": \"error|warning|info\", \"message\": \"problem\", \"suggestion\": \"fix\"}]}"},
	}
}

// chatMessages keeps the last ChatHistoryLimit history entries and adds the
// current code as context before the user's message
func chatMessages(p assistant.Payload) []assistant.Message {
	msgs := []assistant.Message{{Role: assistant.RoleSystem, Content: systemChat}}

	history := p.History
	if len(history) > ChatHistoryLimit {
		history = history[len(history)-ChatHistoryLimit:]
	}
	for _, m := range history {
		role := assistant.RoleAssistant
		if m.Role == assistant.RoleUser {
			role = assistant.RoleUser
		}
		msgs = append(msgs, assistant.Message{Role: role, Content: m.Content})
	}

	if p.Context != "" {
		msgs = append(msgs, assistant.Message{Role: assistant.RoleUser, Content: "For reference, the code I am working on:\n" + fenced(p.Context)})
	}
	return append(msgs, assistant.Message{Role: assistant.RoleUser, Content: p.Message})
}

// stripFences removes markdown code fences around a JSON reply
func stripFences(reply string) string {
	return strings.TrimSpace(fenceMarkers.ReplaceAllString(reply, ""))
}

// extractCode returns the first fenced code block, or fallback
func extractCode(reply, fallback string) string {
	if m := firstBlock.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return fallback
}

// prose returns reply with every fenced block removed
func prose(reply string) string {
	return strings.TrimSpace(anyBlock.ReplaceAllString(reply, ""))
}
