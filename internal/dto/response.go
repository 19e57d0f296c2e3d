package dto

// Response is the success envelope of every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse carries the same text under error and detail so clients of
// either convention can read it.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Detail  string   `json:"detail"`
	Fields  []string `json:"fields,omitempty"`
}
