package domain

import "testing"

func TestGenerationForID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   int
		want int
	}{
		{1, 1},
		{151, 1},
		{152, 2},
		{251, 2},
		{386, 3},
		{493, 4},
		{649, 5},
		{721, 6},
		{809, 7},
		{905, 8},
		{1008, 9},
		{5000, 9}, // beyond the catalog clamps to the latest generation
	}

	for _, tt := range tests {
		if got := GenerationForID(tt.id); got != tt.want {
			t.Errorf("GenerationForID(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestGenerationBounds(t *testing.T) {
	t.Parallel()

	minID, maxID, ok := GenerationBounds(1)
	if !ok || minID != 1 || maxID != 151 {
		t.Errorf("GenerationBounds(1) = (%d, %d, %v), want (1, 151, true)", minID, maxID, ok)
	}

	if _, _, ok := GenerationBounds(42); ok {
		t.Error("unknown generation should report ok=false")
	}
}

func TestTypeColor(t *testing.T) {
	t.Parallel()

	if got := TypeColor("fire"); got != "#F08030" {
		t.Errorf("TypeColor(fire) = %s", got)
	}
	if got := TypeColor("glitch"); got != TypeColor("normal") {
		t.Errorf("unknown type should fall back to normal, got %s", got)
	}
}
