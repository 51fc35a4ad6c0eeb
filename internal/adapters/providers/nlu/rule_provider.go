package nlu

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/velora/vehicle-discovery/internal/domain/providers"
	"github.com/velora/vehicle-discovery/internal/evaluation"
)

// RuleProvider is a dictionary-and-pattern NLU provider. It normalizes the
// query, corrects common misspellings, extracts vehicle entities and detects
// intent without any remote call, so the pipeline keeps working when no
// hosted model is configured.
type RuleProvider struct {
	makeIndex      map[string]string   // lowercase make → canonical
	modelIndex     map[string][2]string // lowercase model → {canonical model, canonical make}
	multiWordIndex map[string][]string  // first word → full multi-word model keys
	cache          providers.CacheProvider
}

var _ providers.NLUProvider = (*RuleProvider)(nil)

var nonAlphaNumDash = regexp.MustCompile(`[^\p{L}\p{N}\s\-'./£€$]`)

var (
	priceMaxPattern = regexp.MustCompile(`(?:under|below|less than|up to|max(?:imum)?)\s*[£€$]?\s*([\d,]+(?:\.\d+)?)\s*(k)?`)
	priceMinPattern = regexp.MustCompile(`(?:over|above|more than|at least|from)\s*[£€$]?\s*([\d,]+(?:\.\d+)?)\s*(k)?`)
	pricePattern    = regexp.MustCompile(`[£€$]\s*([\d,]+(?:\.\d+)?)\s*(k)?`)
	mileagePattern  = regexp.MustCompile(`(?:under|below|less than|max(?:imum)?)\s*([\d,]+)\s*(k)?\s*(?:km|kilometers|kilometres|miles)`)
	yearPattern     = regexp.MustCompile(`\b(?:from|since|newer than)?\s*(19[89]\d|20[0-4]\d)\b`)
)

// NewRuleProvider builds the lookup indexes from the built-in dictionaries.
func NewRuleProvider() *RuleProvider {
	p := &RuleProvider{
		makeIndex:      make(map[string]string),
		modelIndex:     make(map[string][2]string),
		multiWordIndex: make(map[string][]string),
	}
	for mk, models := range knownMakes {
		p.makeIndex[strings.ToLower(mk)] = mk
		for _, model := range models {
			key := strings.ToLower(model)
			p.modelIndex[key] = [2]string{model, mk}
			words := strings.Fields(key)
			if len(words) > 1 {
				p.multiWordIndex[words[0]] = append(p.multiWordIndex[words[0]], key)
			}
		}
	}
	return p
}

// SetCache sets the cache provider for NLU results.
func (p *RuleProvider) SetCache(cache providers.CacheProvider) {
	p.cache = cache
}

// Understand extracts intent and entities from the query text.
func (p *RuleProvider) Understand(ctx context.Context, text string) (*providers.NLUResult, error) {
	normalized := p.normalize(text)
	if normalized == "" {
		return &providers.NLUResult{Intent: evaluation.IntentUnknown}, nil
	}

	cacheKey := "nlu:" + normalized
	if p.cache != nil {
		if data, err := p.cache.Get(ctx, cacheKey); err == nil {
			var cached providers.NLUResult
			if json.Unmarshal(data, &cached) == nil {
				return &cached, nil
			}
		}
	}

	corrected := p.spellCorrect(normalized)

	var entities []providers.Entity

	// Numeric patterns run on the full phrase before tokenization so
	// "under £20,000" survives intact.
	entities = append(entities, p.extractNumeric(corrected)...)

	words := strings.Fields(corrected)
	matched := make(map[int]bool)

	// Multi-word model names first, longest match wins.
	for i := 0; i < len(words); i++ {
		if matched[i] {
			continue
		}
		candidates, ok := p.multiWordIndex[words[i]]
		if !ok {
			continue
		}
		bestLen := 0
		var bestKey string
		for _, key := range candidates {
			keyWords := strings.Fields(key)
			if i+len(keyWords) > len(words) {
				continue
			}
			if strings.Join(words[i:i+len(keyWords)], " ") == key && len(keyWords) > bestLen {
				bestLen = len(keyWords)
				bestKey = key
			}
		}
		if bestKey != "" {
			entry := p.modelIndex[bestKey]
			entities = append(entities,
				providers.Entity{Type: EntityModel, Value: entry[0]},
				providers.Entity{Type: EntityMake, Value: entry[1]},
			)
			for j := i; j < i+bestLen; j++ {
				matched[j] = true
			}
			i += bestLen - 1
		}
	}

	for i, w := range words {
		if matched[i] {
			continue
		}
		switch {
		case p.makeIndex[w] != "":
			entities = append(entities, providers.Entity{Type: EntityMake, Value: p.makeIndex[w]})
		case p.modelIndex[w][0] != "":
			entry := p.modelIndex[w]
			entities = append(entities,
				providers.Entity{Type: EntityModel, Value: entry[0]},
				providers.Entity{Type: EntityMake, Value: entry[1]},
			)
		case fuelTypes[w] != "":
			entities = append(entities, providers.Entity{Type: EntityFuelType, Value: fuelTypes[w]})
		case bodyTypes[w] != "":
			entities = append(entities, providers.Entity{Type: EntityBodyType, Value: bodyTypes[w]})
		case transmissions[w] != "":
			entities = append(entities, providers.Entity{Type: EntityTransmission, Value: transmissions[w]})
		default:
			if _, ok := colors[w]; ok {
				entities = append(entities, providers.Entity{Type: EntityColor, Value: w})
				continue
			}
			if _, ok := qualityAdjectives[w]; ok {
				entities = append(entities, providers.Entity{Type: EntityQuality, Value: w})
			}
		}
	}

	entities = dedupe(entities)
	intent, confidence := detectIntent(corrected, entities)

	result := &providers.NLUResult{
		Intent:     intent,
		Confidence: confidence,
		Entities:   entities,
	}

	if p.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = p.cache.Set(ctx, cacheKey, data, 86400) // 24 hours
		}
	}

	return result, nil
}

func (p *RuleProvider) normalize(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = nonAlphaNumDash.ReplaceAllString(q, "")
	return strings.Join(strings.Fields(q), " ")
}

func (p *RuleProvider) spellCorrect(normalized string) string {
	words := strings.Fields(normalized)
	for i, w := range words {
		if correction, ok := spellingCorrections[w]; ok {
			words[i] = correction
		}
	}
	return strings.Join(words, " ")
}

func (p *RuleProvider) extractNumeric(query string) []providers.Entity {
	var entities []providers.Entity

	if m := priceMaxPattern.FindStringSubmatch(query); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			entities = append(entities, providers.Entity{Type: EntityPriceMax, Value: v})
		}
	} else if m := priceMinPattern.FindStringSubmatch(query); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			entities = append(entities, providers.Entity{Type: EntityPriceMin, Value: v})
		}
	} else if m := pricePattern.FindStringSubmatch(query); m != nil {
		// A bare amount with a currency sign reads as a ceiling.
		if v, ok := parseAmount(m[1], m[2]); ok {
			entities = append(entities, providers.Entity{Type: EntityPriceMax, Value: v})
		}
	}

	if m := mileagePattern.FindStringSubmatch(query); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			entities = append(entities, providers.Entity{Type: EntityMileageMax, Value: v})
		}
	}

	if m := yearPattern.FindStringSubmatch(query); m != nil {
		entities = append(entities, providers.Entity{Type: EntityYearMin, Value: m[1]})
	}

	return entities
}

func parseAmount(digits, kSuffix string) (string, bool) {
	cleaned := strings.ReplaceAll(digits, ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "", false
	}
	if kSuffix != "" {
		v *= 1000
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}

func dedupe(entities []providers.Entity) []providers.Entity {
	seen := make(map[providers.Entity]struct{}, len(entities))
	out := entities[:0]
	for _, e := range entities {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

var refineMarkers = []string{"cheaper", "newer", "lower mileage", "more", "less", "ones", "those", "them"}

func detectIntent(query string, entities []providers.Entity) (evaluation.Intent, float64) {
	for _, marker := range refineMarkers {
		if strings.Contains(query, marker) {
			return evaluation.IntentRefine, 0.8
		}
	}

	var hasMake, hasModel, hasFilter, hasQuality bool
	for _, e := range entities {
		switch e.Type {
		case EntityMake:
			hasMake = true
		case EntityModel:
			hasModel = true
		case EntityQuality:
			hasQuality = true
		default:
			hasFilter = true
		}
	}

	switch {
	case hasMake && hasModel && !hasFilter && !hasQuality:
		return evaluation.IntentLookup, 0.9
	case hasFilter || (hasMake && hasFilter) || (hasQuality && hasMake):
		return evaluation.IntentFilter, 0.85
	case hasMake || hasModel || hasQuality:
		return evaluation.IntentBrowse, 0.7
	}
	return evaluation.IntentUnknown, 0.3
}
