package intent

import (
	"strings"
	"testing"

	"github.com/kulim/agrimarket/backend/internal/model/knowledge"
)

func newClassifier() (*Classifier, *knowledge.Base) {
	kb := knowledge.Default()
	return New(kb), kb
}

func TestClassifyGreeting(t *testing.T) {
	c, _ := newClassifier()

	res := c.Classify("hello")
	if res.Rule != RuleGreeting {
		t.Fatalf("expected greeting rule, got %s", res.Rule)
	}
	if !strings.Contains(res.Text, "agricultural") {
		t.Fatalf("greeting should mention agricultural help, got %q", res.Text)
	}
}

func TestClassifyCropGrowingAspect(t *testing.T) {
	c, kb := newClassifier()
	want, _ := kb.Aspect("tomato", "growing")

	res := c.Classify("how to grow tomatoes")
	if res.Rule != RuleCrop || res.Topic != "tomato" || res.Aspect != "growing" {
		t.Fatalf("unexpected classification: %+v", res)
	}
	if res.Text != want {
		t.Fatalf("expected tomato growing text, got %q", res.Text)
	}
}

func TestClassifyFertilizerSpecialisesByCrop(t *testing.T) {
	c, kb := newClassifier()
	want, _ := kb.Aspect("rice", "fertilizer")

	res := c.Classify("best fertilizer for rice")
	if res.Rule != RuleFertilizer {
		t.Fatalf("expected fertilizer rule, got %s", res.Rule)
	}
	if res.Text != want {
		t.Fatalf("expected rice fertilizer text, got %q", res.Text)
	}
	if generic := kb.ResponseFor("fertilizer", "fertilizer"); res.Text == generic {
		t.Fatal("crop specific fertilizer answer expected, got generic text")
	}
}

func TestClassifyGenericFertilizer(t *testing.T) {
	c, kb := newClassifier()

	res := c.Classify("which fertilizer should I buy?")
	if res.Rule != RuleFertilizer || res.Topic != "fertilizer" {
		t.Fatalf("unexpected classification: %+v", res)
	}
	if res.Text != kb.ResponseFor("fertilizer", "") {
		t.Fatalf("expected generic fertilizer text, got %q", res.Text)
	}
}

func TestClassifyFallback(t *testing.T) {
	c, kb := newClassifier()

	res := c.Classify("xyz unrelated gibberish")
	if res.Rule != RuleFallback {
		t.Fatalf("expected fallback, got %+v", res)
	}
	if res.Text != kb.Fallback() {
		t.Fatalf("unexpected fallback text %q", res.Text)
	}
	for _, category := range []string{"crops", "diseases", "fertilizers", "weather", "market prices"} {
		if !strings.Contains(res.Text, category) {
			t.Fatalf("fallback should list %q: %q", category, res.Text)
		}
	}
}

func TestCategoryRulesPrecedeCropRules(t *testing.T) {
	c, kb := newClassifier()

	res := c.Classify("tomato disease fertilizer question")
	if res.Rule != RuleDisease {
		t.Fatalf("expected disease rule to win, got %s", res.Rule)
	}
	want, _ := kb.Aspect("tomato", "disease")
	if res.Text != want {
		t.Fatalf("expected tomato disease text, got %q", res.Text)
	}
}

func TestRuleOrderIsExplicit(t *testing.T) {
	c, _ := newClassifier()

	cases := []struct {
		utterance string
		rule      string
	}{
		{"fertilizer price today", RuleFertilizer},
		{"will rain hurt my organic farm", RuleWeather},
		{"organic soil tips", RuleOrganic},
		{"soil water retention", RuleSoil},
		{"hi, can you help", RuleGreeting},
		{"please help", RuleHelp},
		{"Current market prices", RulePrice},
		{"Weather impact on crop growth", RuleWeather},
		{"when is the harvest season", RuleCropAdvice},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.utterance).Rule; got != tc.rule {
			t.Fatalf("%q: expected rule %s, got %s", tc.utterance, tc.rule, got)
		}
	}
}

func TestPricesDoNotMentionRice(t *testing.T) {
	c, kb := newClassifier()

	res := c.Classify("fertilizer prices")
	if res.Topic != "fertilizer" {
		t.Fatalf("expected generic fertilizer answer, got topic %q", res.Topic)
	}
	if res.Text != kb.ResponseFor("fertilizer", "") {
		t.Fatalf("unexpected text %q", res.Text)
	}
}

func TestCropWithoutQualifierReturnsComposite(t *testing.T) {
	c, kb := newClassifier()

	res := c.Classify("Tell me about wheat")
	if res.Rule != RuleCrop || res.Aspect != "" {
		t.Fatalf("unexpected classification: %+v", res)
	}
	growing, _ := kb.Aspect("wheat", "growing")
	if !strings.HasSuffix(res.Text, growing) {
		t.Fatalf("composite should end with growing advice, got %q", res.Text)
	}
}

func TestCropAlias(t *testing.T) {
	c, _ := newClassifier()

	res := c.Classify("planting corn")
	if res.Topic != "maize" || res.Aspect != "growing" {
		t.Fatalf("expected maize growing, got %+v", res)
	}
}

func TestClassifyIsTotalAndDeterministic(t *testing.T) {
	c, _ := newClassifier()

	inputs := []string{"a", "?", "tomato", "RICE", "   wheat   ", "12345", "déjà vu", "hello hello", strings.Repeat("z", 500)}
	for _, in := range inputs {
		first := c.Respond(in)
		if first == "" {
			t.Fatalf("empty response for %q", in)
		}
		if again := c.Respond(in); again != first {
			t.Fatalf("non deterministic response for %q", in)
		}
	}
}

func TestOrderListsCategoriesBeforeCrops(t *testing.T) {
	c, _ := newClassifier()

	order := c.Order()
	if order[0] != RuleDisease {
		t.Fatalf("expected disease first, got %s", order[0])
	}
	if order[len(order)-1] != RuleFallback {
		t.Fatalf("expected fallback last, got %s", order[len(order)-1])
	}
	help, crop := -1, -1
	for i, name := range order {
		switch {
		case name == RuleHelp:
			help = i
		case strings.HasPrefix(name, RuleCrop+":") && crop < 0:
			crop = i
		}
	}
	if help < 0 || crop < 0 || help > crop {
		t.Fatalf("category rules must precede crop rules: %v", order)
	}
}
