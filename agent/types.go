package main

import (
	"fmt"
	"strings"

	"github.com/imkonsowa/grocery-rag/models"
)

const (
	MessageTypeEntities = "entities"
	MessageTypeProducts = "products"
	MessageTypeChat     = "chat"
	MessageTypeError    = "error"
)

type ChatRequest struct {
	Message string `json:"message"`
}

func (c *ChatRequest) Validate() error {
	if strings.TrimSpace(c.Message) == "" {
		return fmt.Errorf("message is required")
	}

	return nil
}

type Reply struct {
	ID       string          `json:"id"`
	Entities []models.Entity `json:"entities"`
	Dossier  string          `json:"dossier"`
	Reply    string          `json:"reply"`
}

type ProcessingResult struct {
	Err error
	Msg WebSocketsMessage
}

type WebSocketsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
