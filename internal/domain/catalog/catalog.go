// Package catalog holds the static Protocol and Resource catalogs keyed by
// disaster category. Both are decoded once from embedded TOML files and are
// read-only afterwards, so a *Catalog is safe for concurrent use.
package catalog

import (
	"embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/climavet/climavet/internal/platform/apperr"
)

//go:embed data/protocols.toml data/resources.toml
var dataFS embed.FS

// Catalog is the immutable union of the Protocol Catalog, the Resource
// Catalog and the universal baseline items.
type Catalog struct {
	protocols map[Category]ProtocolTemplate
	resources map[Category][]ResourceTemplateItem
	baseline  []ResourceTemplateItem
}

type resourceFile struct {
	Baseline   []ResourceTemplateItem            `toml:"baseline"`
	Categories map[string][]ResourceTemplateItem `toml:"categories"`
}

// Load decodes the embedded catalog files.
func Load() (*Catalog, error) {
	protoData, err := dataFS.ReadFile("data/protocols.toml")
	if err != nil {
		return nil, fmt.Errorf("read protocols: %w", err)
	}
	resData, err := dataFS.ReadFile("data/resources.toml")
	if err != nil {
		return nil, fmt.Errorf("read resources: %w", err)
	}
	return Parse(string(protoData), string(resData))
}

// Parse builds a Catalog from TOML documents. Unknown keys, unknown
// categories, duplicate item names, non-positive quantities and invalid
// priorities are rejected.
func Parse(protocolsTOML, resourcesTOML string) (*Catalog, error) {
	var rawProtocols map[string]ProtocolTemplate
	md, err := toml.Decode(protocolsTOML, &rawProtocols)
	if err != nil {
		return nil, fmt.Errorf("decode protocols: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode protocols: unknown keys %v", undecoded)
	}

	var rawResources resourceFile
	md, err = toml.Decode(resourcesTOML, &rawResources)
	if err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode resources: unknown keys %v", undecoded)
	}

	c := &Catalog{
		protocols: make(map[Category]ProtocolTemplate, len(rawProtocols)),
		resources: make(map[Category][]ResourceTemplateItem, len(rawResources.Categories)),
	}

	for key, p := range rawProtocols {
		cat := Category(strings.ToUpper(key))
		if !cat.Known() {
			return nil, fmt.Errorf("protocols: unknown category %q", key)
		}
		p.Category = cat
		c.protocols[cat] = p
	}

	if err := validateItems("baseline", rawResources.Baseline); err != nil {
		return nil, err
	}
	c.baseline = rawResources.Baseline

	for key, items := range rawResources.Categories {
		cat := Category(strings.ToUpper(key))
		if !cat.Known() {
			return nil, fmt.Errorf("resources: unknown category %q", key)
		}
		if err := validateItems(string(cat), items); err != nil {
			return nil, err
		}
		c.resources[cat] = items
	}

	return c, nil
}

func validateItems(list string, items []ResourceTemplateItem) error {
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.Name == "" {
			return fmt.Errorf("resources %s[%d]: name is required", list, i)
		}
		if seen[it.Name] {
			return fmt.Errorf("resources %s: duplicate item %q", list, it.Name)
		}
		seen[it.Name] = true
		if it.UnitsNeeded <= 0 {
			return fmt.Errorf("resources %s: %q units_needed must be positive", list, it.Name)
		}
		if !it.Priority.Valid() {
			return fmt.Errorf("resources %s: %q has invalid priority %q", list, it.Name, it.Priority)
		}
	}
	return nil
}

// Protocol returns the protocol for cat. The result is a copy.
func (c *Catalog) Protocol(cat Category) (ProtocolTemplate, bool) {
	p, ok := c.protocols[cat]
	if !ok {
		return ProtocolTemplate{}, false
	}
	return p.clone(), true
}

// LookupProtocol is Protocol with a NotFound error for a missing category.
func (c *Catalog) LookupProtocol(cat Category) (ProtocolTemplate, error) {
	p, ok := c.Protocol(cat)
	if !ok {
		return ProtocolTemplate{}, apperr.NotFound("no protocol for disaster category %q", cat)
	}
	return p, nil
}

// Resources returns the category-specific resource items for cat. The result
// is a copy; ok is false when the category has no entry.
func (c *Catalog) Resources(cat Category) ([]ResourceTemplateItem, bool) {
	items, ok := c.resources[cat]
	if !ok {
		return []ResourceTemplateItem{}, false
	}
	return cloneItems(items), true
}

// Baseline returns the universal items every checklist starts from.
func (c *Catalog) Baseline() []ResourceTemplateItem {
	return cloneItems(c.baseline)
}

// Categories lists the categories that have a protocol, in display order.
func (c *Catalog) Categories() []Category {
	var out []Category
	for _, cat := range AllCategories {
		if _, ok := c.protocols[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}

// Summaries describes every known category, including ones without a
// protocol.
func (c *Catalog) Summaries() []CategorySummary {
	out := make([]CategorySummary, 0, len(AllCategories))
	for _, cat := range AllCategories {
		_, hasProtocol := c.protocols[cat]
		out = append(out, CategorySummary{
			Category:      cat,
			Name:          cat.DisplayName(),
			HasProtocol:   hasProtocol,
			ResourceItems: len(c.resources[cat]),
		})
	}
	return out
}
