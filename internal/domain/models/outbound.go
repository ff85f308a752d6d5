package models

// OutboundMessageRequest is a text message to deliver to a WhatsApp recipient.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// DigestRequest triggers a herd digest on demand. An empty recipient falls
// back to the configured one.
type DigestRequest struct {
	To string `json:"to"`
}
