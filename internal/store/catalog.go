package store

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

const catalogPathEnv = "CATALOG_YAML"

//go:embed catalog.yaml
var catalogFS embed.FS

type catalogFile struct {
	Categories map[string][]types.Item `yaml:"categories"`
}

// Catalog holds the static sellable items, sorted ascending by capacity
// within each category. Loaded once at startup; read-only afterwards.
type Catalog struct {
	log        *logger.Logger
	byCategory map[types.Category][]types.Item
}

// LoadCatalog reads the embedded catalog, or the YAML file CATALOG_YAML
// points at when set.
func LoadCatalog(log *logger.Logger) (*Catalog, error) {
	raw, source, err := readCatalogBytes()
	if err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog (%s): %w", source, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("catalog (%s) has no categories", source)
	}

	byCategory := make(map[types.Category][]types.Item, len(file.Categories))
	total := 0
	for name, items := range file.Categories {
		cat := types.Category(strings.TrimSpace(strings.ToLower(name)))
		if cat == "" {
			return nil, fmt.Errorf("catalog (%s): empty category name", source)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("catalog (%s): category %q is empty", source, cat)
		}
		seen := make(map[int]string, len(items))
		for i := range items {
			items[i].Category = cat
			it := items[i]
			if strings.TrimSpace(it.Name) == "" {
				return nil, fmt.Errorf("catalog (%s): %s item %d has no name", source, cat, i)
			}
			if it.Capacity <= 0 {
				return nil, fmt.Errorf("catalog (%s): %q has non-positive capacity", source, it.Name)
			}
			if it.Price <= 0 {
				return nil, fmt.Errorf("catalog (%s): %q has non-positive price", source, it.Name)
			}
			if prev, dup := seen[it.Capacity]; dup {
				return nil, fmt.Errorf("catalog (%s): %q and %q share capacity %d", source, prev, it.Name, it.Capacity)
			}
			seen[it.Capacity] = it.Name
		}
		sort.Slice(items, func(a, b int) bool { return items[a].Capacity < items[b].Capacity })
		byCategory[cat] = items
		total += len(items)
	}

	catLog := log.With("component", "Catalog")
	catLog.Info("Catalog loaded", "source", source, "categories", len(byCategory), "items", total)

	return &Catalog{log: catLog, byCategory: byCategory}, nil
}

func readCatalogBytes() ([]byte, string, error) {
	if path := strings.TrimSpace(os.Getenv(catalogPathEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", catalogPathEnv, err)
		}
		return raw, path, nil
	}
	raw, err := catalogFS.ReadFile("catalog.yaml")
	if err != nil {
		return nil, "", fmt.Errorf("read embedded catalog: %w", err)
	}
	return raw, "embedded", nil
}

// HasCategory reports whether the catalog carries any items for cat.
func (c *Catalog) HasCategory(cat types.Category) bool {
	return len(c.byCategory[cat]) > 0
}

// Size returns the item count for a category.
func (c *Catalog) Size(cat types.Category) int {
	return len(c.byCategory[cat])
}

// FindByCapacity resolves a requested headcount to the smallest item
// whose capacity covers it, clamping to the largest item when the
// request exceeds everything. ok is false only for an unknown category.
func (c *Catalog) FindByCapacity(cat types.Category, requested int) (types.Item, bool) {
	items := c.byCategory[cat]
	if len(items) == 0 {
		return types.Item{}, false
	}
	for _, it := range items {
		if it.Capacity >= requested {
			return it, true
		}
	}
	return items[len(items)-1], true
}

// Page returns one page of the sorted category, clamping page into
// [1, totalPages]. totalPages is never below 1.
func (c *Catalog) Page(cat types.Category, page, pageSize int) ([]types.Item, int, int) {
	items := c.byCategory[cat]
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil, page, totalPages
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	out := make([]types.Item, end-start)
	copy(out, items[start:end])
	return out, page, totalPages
}
