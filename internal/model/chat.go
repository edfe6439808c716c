package model

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderModel Sender = "model"
)

// ChatMessage is one entry of the assistant conversation.
type ChatMessage struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}
