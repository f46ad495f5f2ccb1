package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/model"

	"gopkg.in/yaml.v3"
)

// generateSampleCatalog writes a base menu and a price override for
// `storefront catalog import`:
//
//	data/catalog/menu.yaml       categories and items
//	data/catalog/promo.yaml.gz   cheaper Roti Susu, applied after menu.yaml
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	base := &model.Catalog{
		Categories: []model.Category{
			{ID: 1, Name: "Roti"},
			{ID: 2, Name: "Kue"},
			{ID: 3, Name: "Minuman"},
		},
		Items: []model.MenuItem{
			{ID: "roti-susu", CategoryID: 1, Name: "Roti Susu", Description: "Roti lembut isi susu", Price: 15000, ImageRef: "roti-susu.png", Rating: 4.5},
			{ID: "roti-coklat", CategoryID: 1, Name: "Roti Coklat", Description: "Roti isi coklat lumer", Price: 7500, ImageRef: "roti-coklat.png", Rating: 4.2},
			{ID: "bolu-pandan", CategoryID: 2, Name: "Bolu Pandan", Description: "Bolu pandan satu loyang", Price: 30000, ImageRef: "bolu-pandan.png", Rating: 4.8},
			{ID: "brownies", CategoryID: 2, Name: "Brownies", Description: "Brownies panggang", Price: 45000, ImageRef: "brownies.png", Rating: 4.7},
			{ID: "es-teh", CategoryID: 3, Name: "Es Teh Manis", Price: 5000, ImageRef: "es-teh.png", Rating: 4.0},
		},
	}
	promo := &model.Catalog{
		Items: []model.MenuItem{
			{ID: "roti-susu", CategoryID: 1, Name: "Roti Susu", Description: "Roti lembut isi susu (promo)", Price: 12000, ImageRef: "roti-susu.png", Rating: 4.5},
		},
	}

	if err := catalog.Validate(catalog.Merge(base, promo)); err != nil {
		log.Fatalf("Sample catalogue is invalid: %v", err)
	}

	files := map[string]*model.Catalog{
		"menu.yaml":     base,
		"promo.yaml.gz": promo,
	}
	for filename, c := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := writeCatalogFile(filePath, c); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d items\n", filePath, len(c.Items))
	}

	fmt.Println("\nImport with:")
	fmt.Println("  storefront catalog import data/catalog/menu.yaml data/catalog/promo.yaml.gz")
}

func writeCatalogFile(filePath string, c *model.Catalog) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var out io.Writer = file
	if strings.HasSuffix(filePath, ".gz") {
		gzipWriter := gzip.NewWriter(file)
		defer gzipWriter.Close()
		out = gzipWriter
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return enc.Close()
}
