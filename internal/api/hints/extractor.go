package hints

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Blurjp/pathavana/internal/types"
)

// Extraction confidences. Pattern-derived values are heuristic but fixed so
// the pipeline stays deterministic.
const (
	confKnownCity    = 0.95
	confProperNoun   = 0.6
	confMonth        = 0.9
	confNumericDate  = 0.8
	confRelativeDate = 0.7
	confActivity     = 0.7
	confBudgetAmount = 0.9
	confBudgetTier   = 0.8
)

// datePattern pairs a compiled expression with the confidence assigned to its
// matches. Order in the slice is precedence: first match per type wins.
type datePattern struct {
	re         *regexp.Regexp
	confidence float64
}

// EntityExtractor matches free-text chat turns against ordered pattern sets
// per entity type. No grammar, no backtracking; a miss yields no entity and
// is never an error.
type EntityExtractor struct {
	logger *slog.Logger
	kb     *DestinationKB

	knownCityRe  *regexp.Regexp
	canonical    map[string]string // lowercased city -> canonical KB key
	properNounRe *regexp.Regexp
	dates        []datePattern
	activityRe   *regexp.Regexp
	budgetAmtRe  *regexp.Regexp
	budgetTierRe *regexp.Regexp
	tierCanon    map[string]string
}

// NewEntityExtractor compiles all patterns up front; extraction itself does
// no allocation beyond the result slice.
func NewEntityExtractor(kb *DestinationKB, logger *slog.Logger) *EntityExtractor {
	cities := kb.Cities()
	sort.Slice(cities, func(i, j int) bool { return len(cities[i]) > len(cities[j]) }) // longest first so "New York" beats "York"

	canonical := make(map[string]string, len(cities))
	escaped := make([]string, 0, len(cities))
	for _, c := range cities {
		canonical[strings.ToLower(c)] = c
		escaped = append(escaped, regexp.QuoteMeta(c))
	}

	return &EntityExtractor{
		logger:       logger,
		kb:           kb,
		knownCityRe:  regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`),
		canonical:    canonical,
		properNounRe: regexp.MustCompile(`(?:to|in|at|visit(?:ing)?|around)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`),
		dates: []datePattern{
			{regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`), confMonth},
			{regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)\b`), confNumericDate},
			{regexp.MustCompile(`(?i)\b(next (?:week|month|summer|winter|spring|fall)|this (?:weekend|week|month)|tomorrow)\b`), confRelativeDate},
		},
		activityRe: regexp.MustCompile(`(?i)\b(museum|hiking|beach|food|nightlife|shopping|romantic|adventure|culture|art|temple|snorkeling|surfing|family|relax(?:ing|ation)?)\b`),
		budgetAmtRe: regexp.MustCompile(`[$€£¥]\s?\d[\d,]*`),
		budgetTierRe: regexp.MustCompile(`(?i)\b(luxury|high[- ]end|upscale|budget|cheap|affordable|backpack(?:ing|er)?|mid[- ]range|moderate)\b`),
		tierCanon: map[string]string{
			"luxury": "luxury", "high-end": "luxury", "high end": "luxury", "upscale": "luxury",
			"budget": "budget", "cheap": "budget", "affordable": "budget",
			"backpacking": "budget", "backpacker": "budget", "backpack": "budget",
			"mid-range": "mid-range", "mid range": "mid-range", "moderate": "mid-range",
		},
	}
}

// Extract applies the ordered pattern sets to a single utterance. At most one
// entity per type is returned; the first (highest-precedence) match wins.
func (e *EntityExtractor) Extract(utterance string) []types.ExtractedEntity {
	entities := make([]types.ExtractedEntity, 0, 4)

	if ent, ok := e.extractDestination(utterance); ok {
		entities = append(entities, ent)
	}
	if ent, ok := e.extractDate(utterance); ok {
		entities = append(entities, ent)
	}
	if ent, ok := e.extractActivity(utterance); ok {
		entities = append(entities, ent)
	}
	if ent, ok := e.extractBudget(utterance); ok {
		entities = append(entities, ent)
	}

	if e.logger != nil && len(entities) > 0 {
		e.logger.Debug("Entities extracted", slog.Int("count", len(entities)))
	}
	return entities
}

// Cumulative extracts entities from every user turn in order and merges them,
// keeping the highest-confidence occurrence per (type, value). The result is
// the entity memory the state tracker classifies against.
func (e *EntityExtractor) Cumulative(history []types.ChatTurn) []types.ExtractedEntity {
	type key struct {
		t types.EntityType
		v string
	}
	seen := make(map[key]int)
	merged := make([]types.ExtractedEntity, 0, 8)

	for _, turn := range history {
		if turn.Role != types.RoleUser {
			continue
		}
		for _, ent := range e.Extract(turn.Content) {
			k := key{ent.Type, ent.Value}
			if idx, ok := seen[k]; ok {
				if ent.Confidence > merged[idx].Confidence {
					merged[idx] = ent
				}
				continue
			}
			seen[k] = len(merged)
			merged = append(merged, ent)
		}
	}
	return merged
}

func (e *EntityExtractor) extractDestination(utterance string) (types.ExtractedEntity, bool) {
	if m := e.knownCityRe.FindString(utterance); m != "" {
		return types.ExtractedEntity{
			Type:       types.EntityDestination,
			Value:      e.canonical[strings.ToLower(m)],
			Confidence: confKnownCity,
		}, true
	}
	for _, m := range e.properNounRe.FindAllStringSubmatch(utterance, -1) {
		// "in June" and friends are dates, not places.
		if e.dates[0].re.MatchString(m[1]) || destinationStopwords[strings.ToLower(m[1])] {
			continue
		}
		return types.ExtractedEntity{
			Type:       types.EntityDestination,
			Value:      m[1],
			Confidence: confProperNoun,
		}, true
	}
	return types.ExtractedEntity{}, false
}

// destinationStopwords are capitalised words the proper-noun fallback must
// not mistake for places.
var destinationStopwords = map[string]bool{
	"i": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true, "sunday": true,
	"christmas": true, "easter": true,
}

func (e *EntityExtractor) extractDate(utterance string) (types.ExtractedEntity, bool) {
	for _, p := range e.dates {
		if m := p.re.FindString(utterance); m != "" {
			return types.ExtractedEntity{
				Type:       types.EntityDate,
				Value:      strings.ToLower(m),
				Confidence: p.confidence,
			}, true
		}
	}
	return types.ExtractedEntity{}, false
}

func (e *EntityExtractor) extractActivity(utterance string) (types.ExtractedEntity, bool) {
	if m := e.activityRe.FindString(utterance); m != "" {
		return types.ExtractedEntity{
			Type:       types.EntityActivity,
			Value:      strings.ToLower(m),
			Confidence: confActivity,
		}, true
	}
	return types.ExtractedEntity{}, false
}

func (e *EntityExtractor) extractBudget(utterance string) (types.ExtractedEntity, bool) {
	// Explicit amounts outrank tier keywords.
	if m := e.budgetAmtRe.FindString(utterance); m != "" {
		return types.ExtractedEntity{
			Type:       types.EntityBudget,
			Value:      strings.ReplaceAll(m, " ", ""),
			Confidence: confBudgetAmount,
		}, true
	}
	if m := e.budgetTierRe.FindString(utterance); m != "" {
		tier, ok := e.tierCanon[strings.ToLower(m)]
		if !ok {
			tier = strings.ToLower(m)
		}
		return types.ExtractedEntity{
			Type:       types.EntityBudget,
			Value:      tier,
			Confidence: confBudgetTier,
		}, true
	}
	return types.ExtractedEntity{}, false
}

// FindByType returns the first entity of the given type, mirroring the
// first-match-wins semantics of extraction.
func FindByType(entities []types.ExtractedEntity, t types.EntityType) (types.ExtractedEntity, bool) {
	for _, ent := range entities {
		if ent.Type == t {
			return ent, true
		}
	}
	return types.ExtractedEntity{}, false
}

// HasType reports whether any entity of the given type is present.
func HasType(entities []types.ExtractedEntity, t types.EntityType) bool {
	_, ok := FindByType(entities, t)
	return ok
}
