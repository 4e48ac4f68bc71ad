package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/imkonsowa/grocery-rag/catalog"
	"github.com/imkonsowa/grocery-rag/composer"
	"github.com/imkonsowa/grocery-rag/extractor"
	"github.com/imkonsowa/grocery-rag/models"
)

type Handler struct {
	store     *catalog.Store
	extractor *extractor.Extractor
	composer  *composer.Composer
}

func NewHandler(store *catalog.Store, extractor *extractor.Extractor, composer *composer.Composer) (*Handler, error) {
	if store == nil || extractor == nil || composer == nil {
		return nil, fmt.Errorf("store, extractor and composer are required")
	}

	return &Handler{
		store:     store,
		extractor: extractor,
		composer:  composer,
	}, nil
}

func (h *Handler) ListCategories() (models.CategoryIndex, error) {
	return h.store.ListCategories()
}

// ListProducts returns the products of one category, or every product sorted
// by name when category is empty.
func (h *Handler) ListProducts(category string) ([]models.Product, error) {
	if category != "" {
		products, err := h.store.ProductsByCategory(category)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []models.Product{}
		}

		return products, nil
	}

	products, err := h.store.ListProducts()
	if err != nil {
		return nil, err
	}

	list := make([]models.Product, 0, len(products))
	for _, p := range products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	return list, nil
}

func (h *Handler) GetProduct(name string) (models.Product, bool, error) {
	return h.store.ProductByName(name)
}

func (h *Handler) extract(ctx context.Context, message string) ([]models.Entity, error) {
	index, err := h.store.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return h.extractor.Extract(ctx, message, index)
}

// Reply runs extraction, lookup and reply generation for one user message.
func (h *Handler) Reply(ctx context.Context, message string) (*Reply, error) {
	id := uuid.NewString()

	entities, err := h.extract(ctx, message)
	if err != nil {
		return nil, err
	}

	dossier, err := h.composer.BuildDossier(entities)
	if err != nil {
		return nil, err
	}

	answer, err := h.composer.Answer(ctx, message, dossier)
	if err != nil {
		return nil, err
	}

	slog.Info("answered chat message", "id", id, "entities", len(entities), "dossierBytes", len(dossier))

	return &Reply{
		ID:       id,
		Entities: entities,
		Dossier:  dossier,
		Reply:    answer,
	}, nil
}

// Stream runs the same pipeline as Reply and emits one message per stage. The
// channel ends with io.EOF on success and is closed afterwards.
func (h *Handler) Stream(ctx context.Context, message string) chan *ProcessingResult {
	resultChan := make(chan *ProcessingResult)

	go func() {
		defer close(resultChan)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		send := func(result *ProcessingResult) bool {
			select {
			case resultChan <- result:
				return true
			case <-ctx.Done():
				return false
			}
		}

		entities, err := h.extract(ctx, message)
		if err != nil {
			send(&ProcessingResult{Err: err})
			return
		}

		if !send(&ProcessingResult{Msg: WebSocketsMessage{Type: MessageTypeEntities, Data: entities}}) {
			return
		}

		dossier, err := h.composer.BuildDossier(entities)
		if err != nil {
			send(&ProcessingResult{Err: err})
			return
		}

		if !send(&ProcessingResult{Msg: WebSocketsMessage{Type: MessageTypeProducts, Data: dossier}}) {
			return
		}

		answer, err := h.composer.Answer(ctx, message, dossier)
		if err != nil {
			send(&ProcessingResult{Err: err})
			return
		}

		if !send(&ProcessingResult{Msg: WebSocketsMessage{Type: MessageTypeChat, Data: answer}}) {
			return
		}

		send(&ProcessingResult{Err: io.EOF})
	}()

	return resultChan
}
