// Package catalog reads menu seed documents from local files or S3.
package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"storefront/internal/model"

	"gopkg.in/yaml.v3"
)

// Loader reads one catalogue seed document.
type Loader interface {
	// Load reads the document at path. Paths ending in .gz are gunzipped.
	Load(ctx context.Context, path string) (*model.Catalog, error)
}

// Decode parses a YAML catalogue, gunzipping it first when name ends in .gz.
func Decode(r io.Reader, name string) (*model.Catalog, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}

	var c model.Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &model.Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to decode catalog %s: %w", name, err)
	}

	if err := Validate(&c); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", name, err)
	}
	return &c, nil
}

// Validate checks IDs are unique, prices non-negative and every item
// references a declared category.
func Validate(c *model.Catalog) error {
	categories := make(map[int64]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID <= 0 || strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("category %d: id and name are required", cat.ID)
		}
		if categories[cat.ID] {
			return fmt.Errorf("category %d: duplicate id", cat.ID)
		}
		categories[cat.ID] = true
	}

	items := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		switch {
		case item.ID == "" || strings.TrimSpace(item.Name) == "":
			return fmt.Errorf("item %q: id and name are required", item.ID)
		case items[item.ID]:
			return fmt.Errorf("item %q: duplicate id", item.ID)
		case item.Price < 0:
			return fmt.Errorf("item %q: negative price", item.ID)
		case !categories[item.CategoryID]:
			return fmt.Errorf("item %q: unknown category %d", item.ID, item.CategoryID)
		}
		items[item.ID] = true
	}
	return nil
}

// Merge combines catalogues in order; later entries replace earlier ones
// with the same ID.
func Merge(catalogs ...*model.Catalog) *model.Catalog {
	out := &model.Catalog{}
	catIndex := map[int64]int{}
	itemIndex := map[string]int{}

	for _, c := range catalogs {
		if c == nil {
			continue
		}
		for _, cat := range c.Categories {
			if i, ok := catIndex[cat.ID]; ok {
				out.Categories[i] = cat
				continue
			}
			catIndex[cat.ID] = len(out.Categories)
			out.Categories = append(out.Categories, cat)
		}
		for _, item := range c.Items {
			if i, ok := itemIndex[item.ID]; ok {
				out.Items[i] = item
				continue
			}
			itemIndex[item.ID] = len(out.Items)
			out.Items = append(out.Items, item)
		}
	}
	return out
}

// LoadAll loads every path concurrently and merges the results in path order.
func LoadAll(ctx context.Context, loader Loader, paths []string) (*model.Catalog, error) {
	type loadResult struct {
		index   int
		catalog *model.Catalog
		err     error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			c, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, catalog: c, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]*model.Catalog, len(paths))
	for r := range resultChan {
		if r.err != nil {
			return nil, fmt.Errorf("failed to load catalog %s: %w", paths[r.index], r.err)
		}
		results[r.index] = r.catalog
	}

	merged := Merge(results...)
	if err := Validate(merged); err != nil {
		return nil, fmt.Errorf("invalid merged catalog: %w", err)
	}
	return merged, nil
}
