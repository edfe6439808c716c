// Package assistant produces replies for the AI assistant panel.
package assistant

import (
	"context"
	"fmt"

	"github.com/idilsaglam/oadesk/internal/model"
)

// Greeting opens every conversation.
const Greeting = "您好！我是您的AI办公助手，有什么可以帮助您的吗？"

// Apology replaces a reply when sending fails.
const Apology = "抱歉，处理您的请求时发生错误。"

// Responder answers one message. Implementations are stateless: whatever
// context they need arrives in history.
type Responder interface {
	Reply(ctx context.Context, message string, history []model.ChatMessage) (string, error)
}

// Scripted acknowledges the message with a fixed template.
type Scripted struct{}

func (Scripted) Reply(ctx context.Context, message string, history []model.ChatMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return EchoReply(message), nil
}

// EchoReply embeds message in the scripted acknowledgment.
func EchoReply(message string) string {
	return fmt.Sprintf("这是对您消息“%s”的模拟回复。后端服务已收到请求。", message)
}
