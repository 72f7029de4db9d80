package intent

import (
	"strings"

	"github.com/kulim/agrimarket/backend/internal/model/knowledge"
)

// Result describes which rule answered an utterance and with what text.
type Result struct {
	Rule   string `json:"rule"`
	Topic  string `json:"topic,omitempty"`
	Aspect string `json:"aspect,omitempty"`
	Text   string `json:"text"`
}

// Classifier maps an utterance to a canned answer. It holds no per-call state
// and is safe for concurrent use.
type Classifier struct {
	kb         *knowledge.Base
	categories []CategoryRule
	crops      []CropRule
}

// New builds a classifier using DefaultRules.
func New(kb *knowledge.Base) *Classifier {
	return NewWithRules(kb, DefaultRules())
}

// NewWithRules builds a classifier evaluating categories in the given order
// before the crop rules derived from kb.
func NewWithRules(kb *knowledge.Base, categories []CategoryRule) *Classifier {
	crops := kb.Crops()
	cropRules := make([]CropRule, 0, len(crops))
	for _, name := range crops {
		cropRules = append(cropRules, CropRule{Name: name})
	}
	return &Classifier{
		kb:         kb,
		categories: append([]CategoryRule(nil), categories...),
		crops:      cropRules,
	}
}

// Classify runs the rules in priority order; the first match wins.
func (c *Classifier) Classify(utterance string) Result {
	normalized := normalize(utterance)
	if normalized == "" {
		return Result{Rule: RuleFallback, Text: c.kb.Fallback()}
	}
	tokens := tokenize(normalized)

	for _, rule := range c.categories {
		if !rule.Matches(normalized, tokens) {
			continue
		}
		res := rule.Handler(c.kb, normalized)
		res.Rule = rule.Name
		return res
	}

	mentioned := make(map[string]struct{})
	for _, crop := range c.kb.MentionedCrops(normalized) {
		mentioned[crop] = struct{}{}
	}
	for _, rule := range c.crops {
		if _, ok := mentioned[rule.Name]; !ok {
			continue
		}
		aspect, _ := c.kb.MatchAspect(rule.Name, normalized)
		return Result{
			Rule:   RuleCrop,
			Topic:  rule.Name,
			Aspect: aspect,
			Text:   c.kb.ResponseFor(rule.Name, normalized),
		}
	}

	for _, kw := range cropAdviceKeywords {
		if strings.Contains(normalized, kw) {
			return Result{Rule: RuleCropAdvice, Topic: "crops", Text: c.kb.ResponseFor("crops", normalized)}
		}
	}

	return Result{Rule: RuleFallback, Text: c.kb.Fallback()}
}

// Respond returns only the answer text.
func (c *Classifier) Respond(utterance string) string {
	return c.Classify(utterance).Text
}

// Order lists rule names in evaluation order.
func (c *Classifier) Order() []string {
	names := make([]string, 0, len(c.categories)+len(c.crops)+2)
	for _, r := range c.categories {
		names = append(names, r.Name)
	}
	for _, r := range c.crops {
		names = append(names, RuleCrop+":"+r.Name)
	}
	return append(names, RuleCropAdvice, RuleFallback)
}
