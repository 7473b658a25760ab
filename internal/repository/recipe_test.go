package repository

import (
	"strings"
	"testing"

	"github.com/recipebox/recipebox-go/internal/model"
)

func TestFilterClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.RecipeFilter
		wantWhere string
		wantArgs  int
	}{
		{"empty", model.RecipeFilter{}, "", 0},
		{"search", model.RecipeFilter{Search: "pasta"}, "MATCH(r.title, r.description, r.tags_text)", 1},
		{"category and window", model.RecipeFilter{Category: model.CategoryLunch, MinTime: 5, MaxTime: 20}, "r.category = ? AND r.cooking_time >= ? AND r.cooking_time <= ?", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := filterClause(tt.filter)
			if !strings.Contains(where, tt.wantWhere) {
				t.Errorf("filterClause() where = %q, want it to contain %q", where, tt.wantWhere)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("filterClause() args = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestEncodeRecipe(t *testing.T) {
	enc, err := encodeRecipe(&model.Recipe{Tags: []string{"quick", "vegan"}})
	if err != nil {
		t.Fatalf("encodeRecipe() unexpected error: %v", err)
	}
	if string(enc.ingredients) != "[]" || string(enc.steps) != "[]" {
		t.Errorf("nil lists encoded as %s / %s, want []", enc.ingredients, enc.steps)
	}
	if string(enc.tags) != `["quick","vegan"]` {
		t.Errorf("tags = %s", enc.tags)
	}
	if enc.tagsText != "quick vegan" {
		t.Errorf("tagsText = %q, want %q", enc.tagsText, "quick vegan")
	}
}
