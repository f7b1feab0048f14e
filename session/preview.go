package session

import (
	"fmt"

	"github.com/NextShop-AI/assistant-go/model"
)

const previewLimit = 50

// previewFor derives the truncated session summary from its last message.
// Assistant messages carrying products report the count instead of the text.
func previewFor(msg model.ChatMessage) string {
	if msg.Sender != model.SenderUser && len(msg.Products) > 0 {
		if len(msg.Products) == 1 {
			return "Showed 1 product"
		}
		return fmt.Sprintf("Showed %d products", len(msg.Products))
	}
	return truncate(msg.Text, previewLimit)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
