package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja/parser"

	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
)

// SourceSimulation marks results produced without a provider
const SourceSimulation = "simulation"

const (
	simulationTip      = "\n\nTip: configure an AI provider API key to chat with a real model."
	simulationNote     = "Simulation mode: configure an AI provider API key for better suggestions."
	emptyCodeMessage   = "The code is empty. Enter some code to explain."
	explainNeedsCode   = "Select some code or type it into the code editor to get an explanation."
	greetingResponse   = "Hello! I can help you write code. What do you need?"
	optimizeResponse   = "For optimization, use the Optimize quick action.\n\nCommon optimizations:\n- var -> const/let\n- arrow functions\n- remove dead code"
	bugResponse        = "To look for bugs, use the Debug quick action.\n\nCommon errors:\n- undefined variables\n- type mismatches\n- missing error handling"
	functionResponse   = "Function examples:\n\n```javascript\n// arrow function\nconst myFunction = (param) => {\n  return param * 2;\n};\n\n// async function\nconst fetchData = async () => {\n  const response = await fetch(url);\n  return response.json();\n};\n```"
	reactResponse      = "React tips:\n\n- useState for state\n- useEffect for side effects\n- keep components pure\n- pass data through props\n- use keys when rendering lists"
	defaultChatSummary = "Things I can help with:\n- explaining and analysing code\n- optimization suggestions\n- finding bugs\n- writing code\n\nAsk a specific question for a more precise answer."
)

var (
	completions = []assistant.Suggestion{
		{
			Text:        "const handleClick = (event) => {\n  event.preventDefault();\n  console.log(\"Clicked\");\n};",
			Description: "Click event handler",
			Score:       0.95,
		},
		{
			Text:        "async function fetchData(url) {\n  try {\n    const response = await fetch(url);\n    return await response.json();\n  } catch (error) {\n    console.error(error);\n  }\n}",
			Description: "Async data fetching",
			Score:       0.88,
		},
		{
			Text:        "const [state, setState] = useState(initialValue);",
			Description: "React useState hook",
			Score:       0.85,
		},
	}

	namedFunction = regexp.MustCompile(`function\s+(\w+)\s*\(`)
)

// Simulator answers every action deterministically from keyword rules
type Simulator struct{}

// NewSimulator creates a simulator
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Respond produces the simulated result for action
func (s *Simulator) Respond(action assistant.Action, p assistant.Payload) (assistant.Result, error) {
	r := assistant.Result{Source: SourceSimulation}
	switch action {
	case assistant.ActionCodeComplete:
		r.Suggestions = simulateCompletions(p.Code)
	case assistant.ActionExplain:
		r.Explanation = simulateExplanation(p.Code)
	case assistant.ActionOptimize:
		r.Optimized = simulateOptimize(p.Code)
		r.Notes = []string{
			"Declared variables with const/let",
			"Converted functions to arrow functions for brevity",
			simulationNote,
		}
	case assistant.ActionDebug:
		r.Issues = simulateDebug(p.Code, p.Language)
	case assistant.ActionChat:
		r.Response = simulateChat(p.Message, p.Context) + simulationTip
	default:
		return assistant.Result{}, fmt.Errorf("%w: %q", assistant.ErrUnknownAction, action)
	}
	return r, nil
}

func simulateCompletions(code string) []assistant.Suggestion {
	out := make([]assistant.Suggestion, len(completions))
	copy(out, completions)
	if strings.Contains(code, "fetch") || strings.Contains(code, "async") {
		return out[1:2]
	}
	return out
}

func simulateExplanation(code string) string {
	if strings.TrimSpace(code) == "" {
		return emptyCodeMessage
	}

	var b strings.Builder
	b.WriteString("What this code does:\n\n")
	rules := []struct {
		keywords []string
		bullet   string
	}{
		{[]string{"function", "=>"}, "Defines functions"},
		{[]string{"const", "let"}, "Declares variables"},
		{[]string{"async", "await"}, "Performs asynchronous work"},
		{[]string{"fetch", "axios"}, "Sends network requests"},
		{[]string{"useState", "useEffect"}, "Uses React hooks"},
	}
	for _, rule := range rules {
		if containsAny(code, rule.keywords...) {
			b.WriteString("- " + rule.bullet + "\n")
		}
	}
	b.WriteString("\nHighlights:\n- Uses ES6+ syntax\n- Follows modern JavaScript patterns\n")
	return b.String()
}

func simulateOptimize(code string) string {
	if code == "" {
		return code
	}
	out := strings.ReplaceAll(code, "var ", "const ")
	return namedFunction.ReplaceAllString(out, "const $1 = (")
}

func simulateDebug(code, language string) []assistant.Issue {
	if strings.TrimSpace(code) == "" {
		return []assistant.Issue{{
			Line:       1,
			Severity:   assistant.SeverityWarning,
			Message:    "The code is empty",
			Suggestion: "Enter some code",
		}}
	}

	var issues []assistant.Issue
	if isJavaScript(language) {
		if issue, ok := syntaxIssue(code); ok {
			issues = append(issues, issue)
		}
	}

	if strings.Contains(code, "var ") {
		line := 1
		for i, l := range strings.Split(code, "\n") {
			if strings.Contains(l, "var ") {
				line = i + 1
				break
			}
		}
		issues = append(issues, assistant.Issue{
			Line:       line,
			Severity:   assistant.SeverityWarning,
			Message:    "Avoid var",
			Suggestion: "Use const or let",
		})
	}

	if strings.Count(code, "console.log") > 2 {
		issues = append(issues, assistant.Issue{
			Line:       1,
			Severity:   assistant.SeverityInfo,
			Message:    "Too many console.log calls",
			Suggestion: "Remove them from production code",
		})
	}

	if !strings.Contains(code, "try") && containsAny(code, "await", "fetch") {
		issues = append(issues, assistant.Issue{
			Line:       1,
			Severity:   assistant.SeverityError,
			Message:    "No error handling",
			Suggestion: "Wrap the call in a try-catch block",
		})
	}

	if len(issues) == 0 {
		return []assistant.Issue{{
			Line:       1,
			Severity:   assistant.SeveritySuccess,
			Message:    "No problems found",
			Suggestion: "The code looks clean!",
		}}
	}
	return issues
}

// syntaxIssue parses code as a JavaScript program
func syntaxIssue(code string) (assistant.Issue, bool) {
	_, err := parser.ParseFile(nil, "snippet.js", code, 0)
	if err == nil {
		return assistant.Issue{}, false
	}

	issue := assistant.Issue{
		Line:       1,
		Severity:   assistant.SeverityError,
		Message:    "Syntax error: " + err.Error(),
		Suggestion: "Fix the syntax before running the code",
	}
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		issue.Message = "Syntax error: " + list[0].Message
		if list[0].Position.Line > 0 {
			issue.Line = list[0].Position.Line
		}
	}
	return issue, true
}

func simulateChat(message, context string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "hello"):
		return greetingResponse
	case strings.Contains(lower, "explain"):
		if context != "" {
			return simulateExplanation(context)
		}
		return explainNeedsCode
	case strings.Contains(lower, "optimize"):
		return optimizeResponse
	case containsAny(lower, "bug", "error"):
		return bugResponse
	case strings.Contains(lower, "function"):
		return functionResponse
	case strings.Contains(lower, "react"):
		return reactResponse
	}
	return fmt.Sprintf("About %q:\n\n%s", message, defaultChatSummary)
}

func isJavaScript(language string) bool {
	switch strings.ToLower(language) {
	case "javascript", "js":
		return true
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
