package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imkonsowa/grocery-rag/completion"
	"github.com/imkonsowa/grocery-rag/config"
	"github.com/imkonsowa/grocery-rag/models"
)

// ParseError carries model output that could not be read as an entity list.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse entities from %q: %v", e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Extractor struct {
	llm   completion.Completer
	model config.Model
}

func New(llm completion.Completer, model config.Model) *Extractor {
	return &Extractor{
		llm:   llm,
		model: model,
	}
}

func (e *Extractor) Messages(userInput string, index *models.CatalogIndex) ([]completion.Message, error) {
	categories, err := models.EncodeJSON(index.Categories.Names(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to encode category names: %w", err)
	}

	byCategory, err := models.EncodeJSON(index.Categories, "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode category index: %w", err)
	}

	products, err := models.EncodeJSON(index.Products, "")
	if err != nil {
		return nil, fmt.Errorf("failed to encode product names: %w", err)
	}

	system := fmt.Sprintf(systemPromptTemplate, completion.Delimiter, categories, byCategory, products)
	userInput = strings.ReplaceAll(userInput, completion.Delimiter, "")

	return []completion.Message{
		{Role: completion.RoleSystem, Content: system},
		{Role: completion.RoleUser, Content: completion.Fence(userInput)},
	}, nil
}

// Extract asks the model which categories or products userInput mentions.
// Unparseable answers are logged and yield an empty list; completion failures
// are returned.
func (e *Extractor) Extract(ctx context.Context, userInput string, index *models.CatalogIndex) ([]models.Entity, error) {
	messages, err := e.Messages(userInput, index)
	if err != nil {
		return nil, err
	}

	text, err := e.llm.Complete(ctx, messages, e.model.Name, e.model.Temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to extract entities: %w", err)
	}

	entities, err := Parse(text)
	if err != nil {
		slog.Warn("discarding unparseable entity list", "text", text, "error", err)
		return []models.Entity{}, nil
	}

	return entities, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

// Parse reads the model's list of entities. Single quotes are turned into
// double quotes first, which also rewrites apostrophes inside names.
func Parse(text string) ([]models.Entity, error) {
	text = stripCodeFence(text)
	if text == "" {
		return []models.Entity{}, nil
	}

	normalized := strings.ReplaceAll(text, "'", `"`)

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(normalized), &raw); err != nil {
		return nil, &ParseError{Text: text, Err: err}
	}

	entities := make([]models.Entity, 0, len(raw))
	for _, obj := range raw {
		if data, ok := obj["products"]; ok {
			var products []string
			if err := json.Unmarshal(data, &products); err == nil {
				if products == nil {
					products = []string{}
				}
				entities = append(entities, models.Entity{Products: products})
				continue
			}
		}

		if data, ok := obj["category"]; ok {
			var category string
			if err := json.Unmarshal(data, &category); err == nil && category != "" {
				entities = append(entities, models.Entity{Category: category})
				continue
			}
		}

		slog.Debug("skipping entity of unknown shape", "entity", obj)
	}

	return entities, nil
}
