package types

// Category groups registry services
type Category string

const (
	CategoryDocuments Category = "documents"
	CategoryAI        Category = "ai"
	CategorySettings  Category = "settings"
	CategoryWeb       Category = "web"
	CategoryExport    Category = "export"
)

// Service describes a registry service and its tools
type Service struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Capabilities []string `json:"capabilities"`
	Tools        []Tool   `json:"tools"`
}

// Tool is one callable operation of a service
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter describes a tool argument
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Context identifies who is calling a tool
type Context struct {
	TabID     *string `json:"tab_id,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// Result is a tool outcome. Failures carry Error and Success=false.
type Result struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *string                `json:"error,omitempty"`
}

// Success wraps data in a successful result
func Success(data map[string]interface{}) *Result {
	return &Result{Success: true, Data: data}
}

// Failure wraps a message in a failed result
func Failure(msg string) *Result {
	return &Result{Success: false, Error: &msg}
}
