package knowledge

// DefaultFallback is returned when nothing in the utterance can be classified.
const DefaultFallback = "I understand you're asking about agriculture. Could you be more specific? I can help with crops, diseases, fertilizers, weather, market prices, organic farming, soil health, and irrigation."

var (
	growingKeywords    = []string{"grow", "plant", "sow", "cultivat", "seed"}
	diseaseKeywords    = []string{"blight", "wilt", "pest", "fung", "infect", "blast", "rust"}
	fertilizerKeywords = []string{"fertilis", "fertiliz", "nutrient", "manure", "npk", "urea"}
)

func growing(response string) Aspect {
	return Aspect{Name: "growing", Keywords: growingKeywords, Response: response}
}

func disease(response string) Aspect {
	return Aspect{Name: "disease", Keywords: diseaseKeywords, Response: response}
}

func fertilizer(response string) Aspect {
	return Aspect{Name: "fertilizer", Keywords: fertilizerKeywords, Response: response}
}

// Seed provides the built-in agricultural knowledge table.
func Seed() []Entry {
	return []Entry{
		{
			Topic:   "tomato",
			Kind:    KindCrop,
			Default: "Tomatoes require well-drained soil and regular watering. They're susceptible to diseases like late blight.",
			Aspects: []Aspect{
				growing("To grow tomatoes, start seeds indoors 6-8 weeks before the last frost, transplant seedlings 45-60 cm apart in full sun, stake or cage the plants, and water deeply at the base 2-3 times a week."),
				disease("Common tomato diseases include late blight, early blight and fusarium wilt. Remove infected leaves, avoid overhead watering, rotate crops every season and apply a copper-based fungicide at the first sign of blight."),
				fertilizer("Tomatoes do well with a balanced 10-10-10 fertilizer at planting, then a low-nitrogen, high-potassium feed once the first fruits set. Add calcium to prevent blossom-end rot."),
			},
		},
		{
			Topic:   "rice",
			Kind:    KindCrop,
			Default: "Rice cultivation requires proper water management. Consider checking for blast disease regularly.",
			Aspects: []Aspect{
				growing("Rice is usually transplanted 20-30 days after nursery sowing into puddled fields. Keep 2-5 cm of standing water during the vegetative stage and drain the field about two weeks before harvest."),
				disease("Watch rice for blast, bacterial leaf blight and sheath blight. Use resistant varieties, avoid excess nitrogen and treat blast early with a recommended fungicide."),
				fertilizer("For rice, apply nitrogen in three splits: at transplanting, at tillering and at panicle initiation. A common rate is 100-120 kg N, 40-60 kg P2O5 and 40 kg K2O per hectare using urea and DAP; add zinc sulfate on zinc-deficient soils."),
			},
		},
		{
			Topic:   "wheat",
			Kind:    KindCrop,
			Default: "Wheat grows best in cool, moist conditions. Watch out for rust diseases.",
			Aspects: []Aspect{
				growing("Sow wheat in cool weather at 100-125 kg of seed per hectare in rows 20 cm apart. The crown root initiation stage, about 21 days after sowing, is the most critical time for the first irrigation."),
				disease("Wheat is mostly threatened by stem, leaf and stripe rust, plus powdery mildew. Grow rust-resistant varieties and spray a triazole fungicide when pustules first appear."),
				fertilizer("Wheat typically needs 120 kg N, 60 kg P2O5 and 40 kg K2O per hectare. Apply half the nitrogen with all the phosphorus and potassium at sowing, and the rest at first irrigation."),
			},
		},
		{
			Topic:   "maize",
			Kind:    KindCrop,
			Aliases: []string{"corn"},
			Default: "Maize needs warm soil, full sun and steady moisture, especially around tasseling.",
			Aspects: []Aspect{
				growing("Plant maize when soil is above 10°C, 3-5 cm deep, in rows 75 cm apart with 20-25 cm between plants. Keep the field weed-free for the first six weeks."),
				disease("Maize is affected by fall armyworm, northern leaf blight and stalk rot. Scout weekly, destroy crop residue after harvest and use certified treated seed."),
				fertilizer("Maize is a heavy nitrogen feeder: apply about 150 kg N per hectare in two or three splits, with phosphorus and potassium at planting based on a soil test."),
			},
		},
		{
			Topic:   "potato",
			Kind:    KindCrop,
			Default: "Potatoes prefer loose, slightly acidic soil and cool temperatures.",
			Aspects: []Aspect{
				growing("Plant certified seed potatoes 10 cm deep and 30 cm apart, then hill soil around the stems as they grow to keep tubers covered from sunlight."),
				disease("Late blight is the most serious potato disease. Use resistant varieties, avoid wetting the foliage and remove volunteer plants that carry the disease over."),
				fertilizer("Potatoes respond well to potassium. Work well-rotted manure into the soil before planting and side-dress with nitrogen at hilling."),
			},
		},
		{
			Topic:   "onion",
			Kind:    KindCrop,
			Default: "Onions need full sun, well-drained soil and consistent moisture until bulbing.",
			Aspects: []Aspect{
				growing("Transplant onion seedlings 10 cm apart in rows 30 cm apart. Stop watering once the tops begin to fall over so the bulbs cure properly."),
				disease("Onions are prone to thrips, downy mildew and purple blotch. Rotate with non-allium crops and keep the foliage dry where possible."),
				fertilizer("Onions need nitrogen early for leaf growth and sulfur for flavor. Stop nitrogen feeding once bulbs start to form."),
			},
		},
		{
			Topic:   "disease",
			Kind:    KindCategory,
			Default: "For plant diseases, I recommend using our Plant Disease Advisory feature. You can upload images and get expert treatment recommendations.",
		},
		{
			Topic:   "fertilizer",
			Kind:    KindCategory,
			Default: "I can suggest fertilizers based on your crop and soil conditions. What crop are you growing?",
		},
		{
			Topic:   "weather",
			Kind:    KindCategory,
			Default: "Weather conditions are crucial for farming. Check the weather widget on your dashboard for real-time updates.",
		},
		{
			Topic:   "price",
			Kind:    KindCategory,
			Default: "Current market prices are available in our marketplace. Visit the Crop Marketplace to see live pricing.",
		},
		{
			Topic:   "organic",
			Kind:    KindCategory,
			Default: "Organic farming relies on compost, crop rotation, green manure and biological pest control instead of synthetic inputs. Certified organic produce usually sells at a premium in the marketplace.",
		},
		{
			Topic:   "soil",
			Kind:    KindCategory,
			Default: "Healthy soil is the foundation of a good harvest. Test your soil pH and nutrients every season, add organic matter regularly and avoid compacting wet soil.",
		},
		{
			Topic:   "water",
			Kind:    KindCategory,
			Default: "Efficient irrigation saves water and improves yields. Drip irrigation delivers water directly to the roots, and watering early in the morning reduces evaporation.",
		},
		{
			Topic:   "greeting",
			Kind:    KindCategory,
			Default: "Hello! How can I assist you with your agricultural needs today?",
		},
		{
			Topic:   "help",
			Kind:    KindCategory,
			Default: "I can help with: crop advice, disease identification, fertilizer recommendations, weather information, market prices, organic farming, soil health, and irrigation. What would you like to know?",
		},
		{
			Topic:   "crops",
			Kind:    KindCategory,
			Default: "I can help you with crop selection, planting schedules, and growing tips. What specific crop are you interested in?",
		},
	}
}

// DefaultSuggestions are the quick prompts shown under a fresh conversation.
func DefaultSuggestions() []string {
	return []string{
		"How to grow tomatoes",
		"Best fertilizer for rice",
		"Weather impact on crop growth",
		"Current market prices",
		"Organic farming tips",
	}
}
