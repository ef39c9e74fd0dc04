package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
)

// Variant describes a card component: the slots it renders and where each
// slot reads from in an insight when the card does not say otherwise.
type Variant struct {
	Name  string
	Slots map[string]string
}

// DefaultVariant is used for cards whose variant is not registered.
const DefaultVariant = model.VariantHeroStat

var variants = map[string]Variant{
	model.VariantHeroStat: {
		Name:  model.VariantHeroStat,
		Slots: map[string]string{"title": "$.title", "value": "$.summary"},
	},
	model.VariantRankedList: {
		Name:  model.VariantRankedList,
		Slots: map[string]string{"title": "$.title", "items": "$.data"},
	},
	model.VariantComparisonSplit: {
		Name:  model.VariantComparisonSplit,
		Slots: map[string]string{"left": "$.data[0]", "right": "$.data[1]"},
	},
	model.VariantTrendChart: {
		Name:  model.VariantTrendChart,
		Slots: map[string]string{"title": "$.title", "series": "$.data"},
	},
	model.VariantDistributionChart: {
		Name:  model.VariantDistributionChart,
		Slots: map[string]string{"title": "$.title", "segments": "$.data"},
	},
	model.VariantKeyHighlight: {
		Name:  model.VariantKeyHighlight,
		Slots: map[string]string{"text": "$.summary"},
	},
}

// Lookup returns the registered variant, falling back to hero_stat.
func Lookup(name string) Variant {
	if v, ok := variants[name]; ok {
		return v
	}
	return variants[DefaultVariant]
}

// Variants lists registered variant names in sorted order.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Binding is a card's data resolved against its insight.
type Binding struct {
	Variant string         `json:"variant"`
	Fields  map[string]any `json:"fields"`
	// Missing lists fields whose path matched nothing.
	Missing []string `json:"missing,omitempty"`
}

// Bind resolves the card's fieldMapping against the insight. Mapping values
// are JSONPath expressions; a bare name such as "summary" means "$.summary".
// Slots of the variant that the card does not map use their defaults.
func Bind(card model.Card, insight model.Insight) (Binding, error) {
	v := Lookup(card.Variant)

	paths := make(map[string]string, len(v.Slots)+len(card.FieldMapping))
	for slot, path := range v.Slots {
		paths[slot] = path
	}
	for field, path := range card.FieldMapping {
		if strings.TrimSpace(path) == "" {
			continue
		}
		paths[field] = path
	}

	doc, err := toGeneric(insight)
	if err != nil {
		return Binding{}, err
	}

	b := Binding{Variant: v.Name, Fields: make(map[string]any, len(paths))}
	for _, field := range sortedKeys(paths) {
		x, err := jp.ParseString(normalizePath(paths[field]))
		if err != nil {
			return Binding{}, fmt.Errorf("card %s field %q: invalid path %q: %w", card.ID, field, paths[field], err)
		}
		switch results := x.Get(doc); len(results) {
		case 0:
			b.Missing = append(b.Missing, field)
		case 1:
			b.Fields[field] = results[0]
		default:
			b.Fields[field] = results
		}
	}
	return b, nil
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "$") || strings.HasPrefix(p, "@") {
		return p
	}
	return "$." + p
}

// toGeneric converts the insight to the map/slice form jp operates on, keyed
// by the JSON field names templates use.
func toGeneric(in model.Insight) (any, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode insight %s: %w", in.ID, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode insight %s: %w", in.ID, err)
	}
	return doc, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
