package catalog

import (
	"fmt"
	"sort"
)

type IssueKind string

const (
	IssueUnknownCategory IssueKind = "unknown_category"
	IssueUnknownProduct  IssueKind = "unknown_product"
)

type Issue struct {
	Kind     IssueKind
	Category string
	Product  string
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueUnknownCategory:
		return fmt.Sprintf("product %q is filed under unlisted category %q", i.Product, i.Category)
	case IssueUnknownProduct:
		return fmt.Sprintf("category %q lists unknown product %q", i.Category, i.Product)
	default:
		return string(i.Kind)
	}
}

// Validate cross-checks the two files. Category values that are lists of
// strings are treated as product name listings; any other value is ignored.
func (s *Store) Validate() ([]Issue, error) {
	categories, err := s.ListCategories()
	if err != nil {
		return nil, err
	}

	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}

	var issues []Issue

	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := products[name]
		if !categories.Has(p.Category) {
			issues = append(issues, Issue{Kind: IssueUnknownCategory, Category: p.Category, Product: name})
		}
	}

	for _, category := range categories.Names() {
		listed, ok := categories[category].([]any)
		if !ok {
			continue
		}
		for _, item := range listed {
			name, ok := item.(string)
			if !ok {
				continue
			}
			if _, found := products[name]; !found {
				issues = append(issues, Issue{Kind: IssueUnknownProduct, Category: category, Product: name})
			}
		}
	}

	return issues, nil
}
