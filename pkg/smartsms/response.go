package smartsms

import "encoding/json"

// APIResponse is the envelope returned by every Smart SMS BD endpoint.
// Status mirrors an HTTP status code; 200 means the message was accepted.
type APIResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SendResult carries the message id assigned by the gateway on success.
type SendResult struct {
	MessageID int64 `json:"messageId,omitempty"`
}
