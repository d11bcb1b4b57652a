package core

import (
	"time"
)

const (
	AdvisorName          = "CropAdvisor"
	AdvisorUserAgent     = "CropAdvisor/0.1"
	AdvisorRepositoryURL = "https://github.com/sandevgo/cropadvisor"
	AdvisorVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Image is an uploaded photo attached to a user turn. Data holds the raw bytes;
// transports encode it the way their endpoint expects.
type Image struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Turn is one message unit of a conversation.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Image     *Image    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	// Final is false only while an assistant turn is still receiving deltas.
	Final bool `json:"final"`
}

// HasImage reports whether the turn carries an uploaded image.
func (t Turn) HasImage() bool {
	return t.Image != nil && len(t.Image.Data) > 0
}

// Message is the wire shape of a turn for OpenAI-style chat endpoints.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
