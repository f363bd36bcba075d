package advisor

import "testing"

func TestExtractDiscount(t *testing.T) {
	tests := []struct {
		name     string
		prose    string
		expected int
		found    bool
	}{
		{"inline_percent", "Apply a 30% discount on dairy.", 30, true},
		{"labeled", "Discount: 45% for the bakery items.", 45, true},
		{"no_match", "Move the stock to the food bank.", 0, false},
		{"plain_percent_only", "Expect 80% of units to move.", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDiscount(tt.prose)
			if ok != tt.found || got != tt.expected {
				t.Errorf("ExtractDiscount(%q) = %d,%v, expected %d,%v", tt.prose, got, ok, tt.expected, tt.found)
			}
		})
	}
}

func TestExtractSellThrough(t *testing.T) {
	tests := []struct {
		name     string
		prose    string
		expected int
		found    bool
	}{
		{"inline", "Predicted 85% sell-through within 24h.", 85, true},
		{"labeled", "Sell-through: 70%", 70, true},
		{"space_variant", "around 60% sell through", 60, true},
		{"no_match", "Donate to the shelter.", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractSellThrough(tt.prose)
			if ok != tt.found || got != tt.expected {
				t.Errorf("ExtractSellThrough(%q) = %d,%v, expected %d,%v", tt.prose, got, ok, tt.expected, tt.found)
			}
		})
	}
}
