package knowledge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeedIsValid(t *testing.T) {
	kb := Default()

	require.Equal(t, []string{"tomato", "rice", "wheat", "maize", "potato", "onion"}, kb.Crops())
	assert.Equal(t, DefaultFallback, kb.Fallback())
}

func TestTopicsContainingIsLiteralSubstring(t *testing.T) {
	kb := Default()

	assert.Equal(t, []string{"tomato", "disease"}, kb.TopicsContaining("tomato disease"))
	assert.Equal(t, []string{"maize"}, kb.TopicsContaining("sweet corn"))
	assert.Equal(t, []string{"rice", "price"}, kb.TopicsContaining("rice price"))
	assert.Empty(t, kb.TopicsContaining("xyz"))
}

func TestMentionedCropsRequiresWordStart(t *testing.T) {
	kb := Default()

	assert.Empty(t, kb.MentionedCrops("current market prices"))
	assert.Equal(t, []string{"tomato"}, kb.MentionedCrops("growing tomatoes"))
	assert.Equal(t, []string{"rice", "wheat"}, kb.MentionedCrops("rice or wheat?"))
}

func TestResponseForAspectPriority(t *testing.T) {
	kb := Default()

	growing, ok := kb.Aspect("tomato", "growing")
	require.True(t, ok)
	disease, ok := kb.Aspect("tomato", "disease")
	require.True(t, ok)

	assert.Equal(t, growing, kb.ResponseFor("tomato", "planting tomato with blight"))
	assert.Equal(t, disease, kb.ResponseFor("tomato", "tomato blight"))
}

func TestResponseForCompositeAndTotal(t *testing.T) {
	kb := Default()
	growing, _ := kb.Aspect("rice", "growing")

	composite := kb.ResponseFor("rice", "rice")
	assert.Contains(t, composite, "water management")
	assert.Contains(t, composite, growing)

	assert.Equal(t, kb.Fallback(), kb.ResponseFor("banana", "banana"))
	assert.NotEmpty(t, kb.ResponseFor("weather", "anything"))
}

func TestResponseForIsIdempotent(t *testing.T) {
	kb := Default()

	for _, topic := range []string{"tomato", "rice", "fertilizer", "unknown"} {
		first := kb.ResponseFor(topic, "how to grow "+topic)
		assert.Equal(t, first, kb.ResponseFor(topic, "how to grow "+topic))
	}
}

func TestEntriesAreCopies(t *testing.T) {
	kb := Default()

	entries := kb.Entries()
	entries[0].Aspects[0].Response = "mutated"

	text, _ := kb.Aspect(entries[0].Topic, entries[0].Aspects[0].Name)
	assert.NotEqual(t, "mutated", text)
}

func TestNewBaseValidation(t *testing.T) {
	valid := Entry{Topic: "okra", Kind: KindCrop, Default: "Okra likes heat."}

	cases := map[string]struct {
		entries  []Entry
		fallback string
	}{
		"missing fallback": {[]Entry{valid}, " "},
		"no topics":        {nil, "fallback"},
		"uppercase topic":  {[]Entry{{Topic: "Okra", Kind: KindCrop, Default: "x"}}, "fallback"},
		"unknown kind":     {[]Entry{{Topic: "okra", Kind: "fruit", Default: "x"}}, "fallback"},
		"no response":      {[]Entry{{Topic: "okra", Kind: KindCrop}}, "fallback"},
		"duplicate alias":  {[]Entry{valid, {Topic: "lady finger", Kind: KindCrop, Aliases: []string{"okra"}, Default: "x"}}, "fallback"},
		"aspect no text":   {[]Entry{{Topic: "okra", Kind: KindCrop, Aspects: []Aspect{{Name: "growing"}}}}, "fallback"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewBase(tc.entries, tc.fallback)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidKnowledge))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	content := `
suggestions:
  - How to grow okra
topics:
  - topic: okra
    kind: crop
    default: Okra thrives in hot weather.
    aspects:
      - name: growing
        keywords: [sow]
        response: Sow okra after the last frost.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	kb, suggestions, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"How to grow okra"}, suggestions)
	assert.Equal(t, DefaultFallback, kb.Fallback())
	assert.Equal(t, "Sow okra after the last frost.", kb.ResponseFor("okra", "when to sow okra"))
}

func TestLoadFileErrors(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, _, err = Parse([]byte("topics: [::"))
	require.ErrorIs(t, err, ErrInvalidKnowledge)
}

func TestOpenDefaults(t *testing.T) {
	kb, suggestions, err := Open("")
	require.NoError(t, err)

	assert.Equal(t, Default().Crops(), kb.Crops())
	assert.Equal(t, DefaultSuggestions(), suggestions)
}
