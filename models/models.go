package models

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// CategoryIndex is the parsed category file: category label to an opaque value,
// usually the names of the products filed under it.
type CategoryIndex map[string]any

// Names returns the category labels in lexical order.
func (c CategoryIndex) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (c CategoryIndex) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Product is a catalog record keyed by Name. Record is the stored object as-is;
// Category is copied out of it for filtering.
type Product struct {
	Name     string
	Category string
	Record   map[string]any
}

func NewProduct(name string, record map[string]any) (Product, error) {
	category, ok := record["category"].(string)
	if !ok {
		return Product{}, fmt.Errorf("product %q has no string category field", name)
	}

	return Product{
		Name:     name,
		Category: category,
		Record:   record,
	}, nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Record)
}

// Stringify renders the record as indented JSON for the dossier.
func (p Product) Stringify() string {
	data, err := EncodeJSON(p.Record, "    ")
	if err != nil {
		slog.Warn("failed to encode product record", "product", p.Name, "error", err)
		return fmt.Sprintf("Product: %s, Category: %s", p.Name, p.Category)
	}

	return string(data)
}

// Entity is one extraction result: either a category or a list of product names.
type Entity struct {
	Category string   `json:"category,omitempty"`
	Products []string `json:"products,omitempty"`
}

func (e Entity) IsCategory() bool {
	return e.Category != "" && e.Products == nil
}

func (e Entity) IsProducts() bool {
	return e.Products != nil
}

// CatalogIndex is the catalog listing handed to the extractor prompt.
type CatalogIndex struct {
	Categories CategoryIndex `json:"categories"`
	Products   []string      `json:"products"`
}
