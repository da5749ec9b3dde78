package response

type StandardApiResponse struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Message    string      `json:"message"`
	RequestID  string      `json:"request_id,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}
