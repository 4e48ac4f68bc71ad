package main

import (
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/imkonsowa/grocery-rag/catalog"
	"github.com/imkonsowa/grocery-rag/config"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	os.Exit(run(catalog.NewStore(cfg.Catalog)))
}

// run returns the process exit code: 0 for a consistent catalog, 1 when
// issues were found and 2 when the files could not be read.
func run(store *catalog.Store) int {
	issues, err := store.Validate()
	if err != nil {
		slog.Error("failed to read catalog", "error", err)
		return 2
	}

	for _, issue := range issues {
		slog.Warn("catalog issue", "kind", issue.Kind, "category", issue.Category, "product", issue.Product, "detail", issue.String())
	}

	index, err := store.Index()
	if err != nil {
		slog.Error("failed to index catalog", "error", err)
		return 2
	}

	slog.Info("catalog check complete", "categories", len(index.Categories), "products", len(index.Products), "issues", len(issues))

	if len(issues) > 0 {
		return 1
	}

	return 0
}
