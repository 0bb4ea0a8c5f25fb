package ingest

import (
	"context"
	"fmt"
)

// UserCreator creates accounts that do not exist yet
type UserCreator interface {
	EnsureUser(ctx context.Context, username, email, password, role string) error
}

// Demo account created by Seed
const (
	DemoUsername = "demo"
	DemoPassword = "demo123"
	DemoEmail    = "demo@farming.ai"
)

var demoEntries = []Entry{
	{
		Question: "What are common crop diseases I should watch for?",
		Answer:   "Common crop diseases include: 1) Early/Late Blight in potatoes, 2) Powdery Mildew in various crops, 3) Root Rot in beans, 4) Leaf Spot in tomatoes, 5) Rust in small grains. Regular scouting and proper spacing help with prevention.",
		Intent:   "disease",
		Crop:     "general",
	},
	{
		Question: "How do I know if my crops have nutrient deficiency?",
		Answer:   "Signs of nutrient deficiency: Nitrogen deficiency shows yellowing leaves, Phosphorus deficiency shows purple coloring, Potassium deficiency shows brown leaf edges. Get a soil test to determine exact deficiencies and apply appropriate fertilizer.",
		Intent:   "fertilizer",
		Crop:     "general",
	},
	{
		Question: "How often should I water my crops?",
		Answer:   "Water requirements depend on crop type and soil moisture. Most crops need 1-2 inches per week. Water deeply but less frequently to encourage deep root growth. Check soil moisture 4 inches deep - if dry, it's time to water. Avoid watering in hot sun.",
		Intent:   "irrigation",
		Crop:     "general",
	},
	{
		Question: "When is the best time to harvest crops?",
		Answer:   "Harvest timing varies by crop: Grains should be at boot stage, Tomatoes when fully colored, Beans when pods are firm, Root vegetables when mature size, Leafy greens before bolting. Early morning harvesting usually provides best quality.",
		Intent:   "harvest",
		Crop:     "general",
	},
	{
		Question: "How does weather affect crop yields?",
		Answer:   "Weather significantly impacts yields: Temperature affects growth rates and crop maturity, Rainfall affects irrigation needs and disease pressure, Frost can damage sensitive crops, Wind can cause physical damage and water loss, Humidity promotes fungal diseases. Monitor weather forecasts for optimal timing.",
		Intent:   "weather",
		Crop:     "general",
	},
}

// DemoEntries returns a copy of the sample knowledge entries.
func DemoEntries() []Entry {
	return append([]Entry(nil), demoEntries...)
}

// Seed creates the demo farmer account and the sample entries. Questions
// already in the store are left alone.
func (imp *Importer) Seed(ctx context.Context, users UserCreator) (Result, error) {
	var res Result

	if err := users.EnsureUser(ctx, DemoUsername, DemoEmail, DemoPassword, "farmer"); err != nil {
		return res, fmt.Errorf("failed to create demo user: %w", err)
	}

	for _, e := range demoEntries {
		exists, err := imp.store.QuestionExists(ctx, e.Question)
		if err != nil {
			return res, err
		}
		if exists {
			res.Duplicates++
			continue
		}
		if _, err := imp.store.AddEntry(ctx, e); err != nil {
			return res, fmt.Errorf("failed to add demo entry: %w", err)
		}
		res.Added++
	}

	imp.logger.WithContext("added", res.Added).Info("seeded demo data")
	return res, nil
}
