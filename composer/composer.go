package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/imkonsowa/grocery-rag/completion"
	"github.com/imkonsowa/grocery-rag/config"
	"github.com/imkonsowa/grocery-rag/models"
)

const SystemPrompt = `You are a customer service assistant for an online grocery store.
Respond in a friendly and helpful tone, with concise answers.
Make sure to ask the user relevant follow-up questions.`

type Catalog interface {
	ProductsByCategory(category string) ([]models.Product, error)
	ProductByName(name string) (models.Product, bool, error)
}

type Composer struct {
	llm     completion.Completer
	catalog Catalog
	model   config.Model
}

func New(llm completion.Completer, catalog Catalog, model config.Model) *Composer {
	return &Composer{
		llm:     llm,
		catalog: catalog,
		model:   model,
	}
}

// BuildDossier resolves entities against the catalog, in order, and renders
// every found record. Names and categories that match nothing are skipped.
func (c *Composer) BuildDossier(entities []models.Entity) (string, error) {
	var dossier strings.Builder

	for _, entity := range entities {
		switch {
		case entity.IsProducts():
			for _, name := range entity.Products {
				product, ok, err := c.catalog.ProductByName(name)
				if err != nil {
					return "", fmt.Errorf("failed to look up product %q: %w", name, err)
				}
				if !ok {
					continue
				}
				dossier.WriteString(product.Stringify())
				dossier.WriteString("\n")
			}
		case entity.IsCategory():
			products, err := c.catalog.ProductsByCategory(entity.Category)
			if err != nil {
				return "", fmt.Errorf("failed to list category %q: %w", entity.Category, err)
			}
			for _, product := range products {
				dossier.WriteString(product.Stringify())
				dossier.WriteString("\n")
			}
		}
	}

	return dossier.String(), nil
}

func (c *Composer) Messages(userMessage, dossier string) []completion.Message {
	return []completion.Message{
		{Role: completion.RoleSystem, Content: SystemPrompt},
		{Role: completion.RoleUser, Content: completion.Fence(userMessage)},
		{Role: completion.RoleAssistant, Content: "Relevant product information:\n" + dossier},
	}
}

func (c *Composer) Answer(ctx context.Context, userMessage, dossier string) (string, error) {
	reply, err := c.llm.Complete(ctx, c.Messages(userMessage, dossier), c.model.Name, c.model.Temperature)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	return strings.TrimSpace(reply), nil
}
