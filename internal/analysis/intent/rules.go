package intent

import (
	"strings"
	"unicode"

	"github.com/kulim/agrimarket/backend/internal/model/knowledge"
)

// Rule names reported in Result.Rule.
const (
	RuleDisease    = "disease"
	RuleFertilizer = "fertilizer"
	RuleWeather    = "weather"
	RulePrice      = "price"
	RuleOrganic    = "organic"
	RuleSoil       = "soil"
	RuleWater      = "water"
	RuleGreeting   = "greeting"
	RuleHelp       = "help"
	RuleCrop       = "crop"
	RuleCropAdvice = "crops"
	RuleFallback   = "fallback"
)

// Handler produces the answer once a category rule has matched.
type Handler func(kb *knowledge.Base, utterance string) Result

// CategoryRule fires when any keyword is a substring of the utterance or any
// word is one of its tokens.
type CategoryRule struct {
	Name     string
	Keywords []string
	Words    []string
	Handler  Handler
}

// Matches reports whether the normalised utterance triggers the rule.
func (r CategoryRule) Matches(normalized string, tokens map[string]struct{}) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	for _, w := range r.Words {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}

// CropRule answers for one crop topic of the knowledge base.
type CropRule struct {
	Name string
}

// DefaultRules is the canonical category order. Earlier rules win when an
// utterance carries keywords of several categories.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{
			Name:     RuleDisease,
			Keywords: []string{"disease", "pest", "problem", "sick", "infect", "insect", "blight", "fungus", "fungal", "virus"},
			Words:    []string{"bug", "bugs"},
			Handler:  cropAspect("disease", "disease"),
		},
		{
			Name:     RuleFertilizer,
			Keywords: []string{"fertiliz", "fertilis", "nutrient", "manure", "npk", "urea"},
			Handler:  cropAspect("fertilizer", "fertilizer"),
		},
		{
			Name:     RuleWeather,
			Keywords: []string{"weather", "temperature", "climate", "forecast", "drought", "frost", "humidity", "rainfall", "rainy", "raining", "monsoon"},
			Words:    []string{"rain", "rains", "heat"},
			Handler:  topic("weather"),
		},
		{
			Name:     RulePrice,
			Keywords: []string{"price", "market", "sell", "cost", "profit"},
			Words:    []string{"buy"},
			Handler:  topic("price"),
		},
		{
			Name:     RuleOrganic,
			Keywords: []string{"organic", "compost", "natural farming", "chemical-free"},
			Handler:  topic("organic"),
		},
		{
			Name:     RuleSoil,
			Keywords: []string{"soil", "loam", "clay", "erosion", "tillage"},
			Words:    []string{"ph"},
			Handler:  topic("soil"),
		},
		{
			Name:     RuleWater,
			Keywords: []string{"water", "irrigat", "drip", "sprinkler", "moisture"},
			Handler:  topic("water"),
		},
		{
			Name:     RuleGreeting,
			Keywords: []string{"hello", "good morning", "good afternoon", "good evening", "greetings", "namaste"},
			Words:    []string{"hi", "hey", "hiya", "howdy"},
			Handler:  topic("greeting"),
		},
		{
			Name:     RuleHelp,
			Keywords: []string{"help", "what can you do", "what do you know"},
			Handler:  topic("help"),
		},
	}
}

var cropAdviceKeywords = []string{"crop", "harvest", "yield"}

func topic(name string) Handler {
	return func(kb *knowledge.Base, utterance string) Result {
		return Result{Topic: name, Text: kb.ResponseFor(name, utterance)}
	}
}

// cropAspect answers with the aspect of the first mentioned crop, falling back
// to the category topic when no crop carries that aspect.
func cropAspect(category, aspect string) Handler {
	generic := topic(category)
	return func(kb *knowledge.Base, utterance string) Result {
		for _, crop := range kb.MentionedCrops(utterance) {
			if text, ok := kb.Aspect(crop, aspect); ok {
				return Result{Topic: crop, Aspect: aspect, Text: text}
			}
		}
		return generic(kb, utterance)
	}
}

func normalize(utterance string) string {
	return strings.ToLower(strings.TrimSpace(utterance))
}

func tokenize(normalized string) map[string]struct{} {
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}
