package knowledge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKnowledge is returned when a knowledge table fails validation.
var ErrInvalidKnowledge = errors.New("invalid knowledge base")

// Kind separates crop topics from general farming categories.
type Kind string

const (
	KindCrop     Kind = "crop"
	KindCategory Kind = "category"
)

// Aspect is a sub-answer of a topic, selected when its name or one of its
// keywords occurs in the utterance.
type Aspect struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Response string   `json:"response" yaml:"response"`
}

func (a Aspect) matches(utterance string) bool {
	if strings.Contains(utterance, a.Name) {
		return true
	}
	for _, kw := range a.Keywords {
		if kw != "" && strings.Contains(utterance, kw) {
			return true
		}
	}
	return false
}

// Entry maps one topic to its response text. Aspects are ordered by priority.
type Entry struct {
	Topic   string   `json:"topic" yaml:"topic"`
	Kind    Kind     `json:"kind" yaml:"kind"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
	Aspects []Aspect `json:"aspects,omitempty" yaml:"aspects,omitempty"`
}

func (e Entry) keys() []string {
	return append([]string{e.Topic}, e.Aliases...)
}

// composite joins the topic's default text with its leading aspect, which by
// convention is the growing advice.
func (e Entry) composite() string {
	if len(e.Aspects) == 0 {
		return e.Default
	}
	if e.Default == "" {
		return e.Aspects[0].Response
	}
	return e.Default + " " + e.Aspects[0].Response
}

// Base is the read-only topic table consulted by the classifier.
type Base struct {
	entries  []Entry
	index    map[string]int
	fallback string
}

// NewBase validates entries and freezes them into a Base.
func NewBase(entries []Entry, fallback string) (*Base, error) {
	fallback = strings.TrimSpace(fallback)
	if fallback == "" {
		return nil, fmt.Errorf("%w: fallback response is required", ErrInvalidKnowledge)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no topics defined", ErrInvalidKnowledge)
	}

	b := &Base{
		entries:  make([]Entry, 0, len(entries)),
		index:    make(map[string]int, len(entries)),
		fallback: fallback,
	}
	seen := make(map[string]string)

	for i, entry := range entries {
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidKnowledge, i, err)
		}
		for _, key := range entry.keys() {
			if owner, dup := seen[key]; dup {
				return nil, fmt.Errorf("%w: key %q of topic %q already used by %q", ErrInvalidKnowledge, key, entry.Topic, owner)
			}
			seen[key] = entry.Topic
		}

		b.index[entry.Topic] = len(b.entries)
		b.entries = append(b.entries, cloneEntry(entry))
	}

	return b, nil
}

// Default returns the built-in table. It panics only if Seed is malformed.
func Default() *Base {
	b, err := NewBase(Seed(), DefaultFallback)
	if err != nil {
		panic(err)
	}
	return b
}

func validateEntry(e Entry) error {
	for _, key := range e.keys() {
		if key == "" {
			return errors.New("empty topic or alias")
		}
		if key != strings.ToLower(strings.TrimSpace(key)) {
			return fmt.Errorf("key %q must be lowercase and trimmed", key)
		}
	}
	if e.Kind != KindCrop && e.Kind != KindCategory {
		return fmt.Errorf("topic %q has unknown kind %q", e.Topic, e.Kind)
	}
	if e.Default == "" && len(e.Aspects) == 0 {
		return fmt.Errorf("topic %q has no response", e.Topic)
	}
	for _, a := range e.Aspects {
		if a.Name == "" || a.Response == "" {
			return fmt.Errorf("topic %q has an aspect without name or response", e.Topic)
		}
	}
	return nil
}

func cloneEntry(e Entry) Entry {
	e.Aliases = append([]string(nil), e.Aliases...)
	aspects := make([]Aspect, len(e.Aspects))
	for i, a := range e.Aspects {
		a.Keywords = append([]string(nil), a.Keywords...)
		aspects[i] = a
	}
	e.Aspects = aspects
	return e
}

// TopicsContaining returns, in table order, every topic whose key or alias is
// a substring of the lowercased utterance.
func (b *Base) TopicsContaining(utteranceLower string) []string {
	var topics []string
	for _, e := range b.entries {
		for _, key := range e.keys() {
			if strings.Contains(utteranceLower, key) {
				topics = append(topics, e.Topic)
				break
			}
		}
	}
	return topics
}

// ResponseFor picks the first matching aspect of topic, or the topic's default
// text. Unknown topics resolve to the fallback so the lookup is total.
func (b *Base) ResponseFor(topic, utteranceLower string) string {
	i, ok := b.index[topic]
	if !ok {
		return b.fallback
	}
	e := b.entries[i]
	if len(e.Aspects) == 0 {
		return e.Default
	}
	for _, a := range e.Aspects {
		if a.matches(utteranceLower) {
			return a.Response
		}
	}
	return e.composite()
}

// Aspect looks up a named aspect of a topic.
func (b *Base) Aspect(topic, aspect string) (string, bool) {
	i, ok := b.index[topic]
	if !ok {
		return "", false
	}
	for _, a := range b.entries[i].Aspects {
		if a.Name == aspect {
			return a.Response, true
		}
	}
	return "", false
}

// MatchAspect reports the name of the first aspect of topic present in the
// utterance.
func (b *Base) MatchAspect(topic, utteranceLower string) (string, bool) {
	i, ok := b.index[topic]
	if !ok {
		return "", false
	}
	for _, a := range b.entries[i].Aspects {
		if a.matches(utteranceLower) {
			return a.Name, true
		}
	}
	return "", false
}

// Crops lists crop topics in table order.
func (b *Base) Crops() []string {
	var crops []string
	for _, e := range b.entries {
		if e.Kind == KindCrop {
			crops = append(crops, e.Topic)
		}
	}
	return crops
}

// MentionedCrops is TopicsContaining restricted to crop topics whose key starts
// a word, so "prices" does not mention rice while "tomatoes" mentions tomato.
func (b *Base) MentionedCrops(utteranceLower string) []string {
	var crops []string
	for _, e := range b.entries {
		if e.Kind != KindCrop {
			continue
		}
		for _, key := range e.keys() {
			if containsAtWordStart(utteranceLower, key) {
				crops = append(crops, e.Topic)
				break
			}
		}
	}
	return crops
}

func containsAtWordStart(s, key string) bool {
	for offset := 0; offset <= len(s)-len(key); {
		i := strings.Index(s[offset:], key)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 || !isLetter(s[at-1]) {
			return true
		}
		offset = at + 1
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Entries returns a copy of the table.
func (b *Base) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// Fallback is the clarification answer for unclassifiable input.
func (b *Base) Fallback() string {
	return b.fallback
}
