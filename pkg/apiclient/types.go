package apiclient

import (
	"encoding/json"
	"strings"
)

const (
	// DefaultTemperature is used when no temperature has been chosen yet.
	DefaultTemperature = 0.7
	// MinTemperature and MaxTemperature bound every temperature sent to the backend.
	MinTemperature = 0.0
	MaxTemperature = 1.0
	// DefaultMaxNewTokens is the fixed generation length requested by this client.
	DefaultMaxNewTokens = 200
	// MaxPromptLength is the longest prompt, in runes, the backend accepts.
	MaxPromptLength = 1000
)

// GenerationRequest is the body of POST /generate.
type GenerationRequest struct {
	Prompt       string  `json:"prompt"`
	Temperature  float64 `json:"temperature"`
	MaxNewTokens int     `json:"max_new_tokens"`
}

// NewGenerationRequest builds a request with the prompt trimmed of
// surrounding whitespace. Values are not range-checked.
func NewGenerationRequest(prompt string, temperature float64, maxNewTokens int) GenerationRequest {
	return GenerationRequest{
		Prompt:       strings.TrimSpace(prompt),
		Temperature:  temperature,
		MaxNewTokens: maxNewTokens,
	}
}

// GenerationResult is the success body of POST /generate. Every field is
// server-assigned and kept verbatim.
type GenerationResult struct {
	Output      string  `json:"output"`
	TimeTaken   float64 `json:"time_taken"`
	Temperature float64 `json:"temperature"`
	Timestamp   string  `json:"timestamp"`
	Prompt      string  `json:"prompt"`
}

// ModelInfo describes the model loaded by the backend. Fields the backend
// reports beyond name and status are kept in Extra.
type ModelInfo struct {
	ModelName string         `json:"model_name"`
	Status    string         `json:"status"`
	Extra     map[string]any `json:"-"`
}

// Health is the success body of GET /health.
type Health struct {
	Status    string    `json:"status"`
	ModelInfo ModelInfo `json:"model_info"`
	Timestamp string    `json:"timestamp"`
}

// LogsResponse is the body of GET /logs.
type LogsResponse struct {
	Logs         []string `json:"logs"`
	TotalEntries int      `json:"total_entries"`
	Showing      int      `json:"showing"`
	Message      string   `json:"message,omitempty"`
}

// Info is the body of GET /.
type Info struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// errorBody is the optional body of a failed request.
type errorBody struct {
	Detail any `json:"detail"`
}

// UnmarshalJSON decodes the known fields and collects the rest into Extra.
func (m *ModelInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = ModelInfo{}

	for k, v := range raw {
		switch k {
		case "model_name":
			m.ModelName, _ = v.(string)
		case "status":
			m.Status, _ = v.(string)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}

	return nil
}
