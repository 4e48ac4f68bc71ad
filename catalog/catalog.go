package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/imkonsowa/grocery-rag/config"
	"github.com/imkonsowa/grocery-rag/models"
	"gopkg.in/yaml.v3"
)

// StorageError reports a catalog file that could not be read or decoded.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("catalog storage %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Store reads the catalog from two flat files. Every call goes back to disk.
type Store struct {
	categoriesFile string
	productsFile   string
}

func NewStore(cfg config.Catalog) *Store {
	return &Store{
		categoriesFile: cfg.CategoriesFile,
		productsFile:   cfg.ProductsFile,
	}
}

func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &StorageError{Path: path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = decodeJSON(data, out)
	}
	if err != nil {
		return &StorageError{Path: path, Err: err}
	}

	return nil
}

// decodeJSON keeps numbers as json.Number so large integers and exact
// decimals reach the dossier as written in the file.
func decodeJSON(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(out); err != nil {
		return err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after top-level value")
	}

	return nil
}

func (s *Store) ListCategories() (models.CategoryIndex, error) {
	var categories models.CategoryIndex
	if err := decodeFile(s.categoriesFile, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		return nil, &StorageError{Path: s.categoriesFile, Err: fmt.Errorf("empty category file")}
	}

	return categories, nil
}

func (s *Store) ListProducts() (map[string]models.Product, error) {
	var records map[string]map[string]any
	if err := decodeFile(s.productsFile, &records); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, &StorageError{Path: s.productsFile, Err: fmt.Errorf("empty product file")}
	}

	products := make(map[string]models.Product, len(records))
	for name, record := range records {
		product, err := models.NewProduct(name, record)
		if err != nil {
			return nil, &StorageError{Path: s.productsFile, Err: err}
		}
		products[name] = product
	}

	return products, nil
}

// ProductsByCategory returns the products whose category equals category,
// ordered by name.
func (s *Store) ProductsByCategory(category string) ([]models.Product, error) {
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}

	var matched []models.Product
	for _, p := range products {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})

	return matched, nil
}

// ProductByName looks up an exact name. A missing product is reported by the
// boolean, not by the error.
func (s *Store) ProductByName(name string) (models.Product, bool, error) {
	products, err := s.ListProducts()
	if err != nil {
		return models.Product{}, false, err
	}

	product, ok := products[name]

	return product, ok, nil
}

func (s *Store) Index() (*models.CatalogIndex, error) {
	categories, err := s.ListCategories()
	if err != nil {
		return nil, err
	}

	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.Strings(names)

	return &models.CatalogIndex{
		Categories: categories,
		Products:   names,
	}, nil
}
