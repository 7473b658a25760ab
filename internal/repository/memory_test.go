package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/recipebox/recipebox-go/internal/model"
)

func seedUser(t *testing.T, users *MemoryUserRepository, id, username string) {
	t.Helper()
	err := users.Create(context.Background(), &model.User{
		ID: id, Username: username, Email: username + "@example.com", Role: model.RoleStandard,
	})
	if err != nil {
		t.Fatalf("Create(%s) unexpected error: %v", username, err)
	}
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	users, _ := NewMemoryRepositories()
	seedUser(t, users, "u1", "alice")

	got, err := users.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() unexpected error: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("GetByEmail().ID = %q, want %q", got.ID, "u1")
	}

	if _, err := users.GetByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID(missing) error = %v, want %v", err, ErrUserNotFound)
	}

	dupes := []*model.User{
		{ID: "u2", Username: "alice", Email: "other@example.com"},
		{ID: "u3", Username: "other", Email: "alice@example.com"},
	}
	for _, u := range dupes {
		if err := users.Create(ctx, u); !errors.Is(err, ErrDuplicateUser) {
			t.Errorf("Create(%s/%s) error = %v, want %v", u.Username, u.Email, err, ErrDuplicateUser)
		}
	}

	exists, _ := users.ExistsByUsernameOrEmail(ctx, "nobody", "alice@example.com")
	if !exists {
		t.Error("ExistsByUsernameOrEmail() = false, want true")
	}

	if err := users.UpdateRole(ctx, "u1", model.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole() unexpected error: %v", err)
	}
	got, _ = users.GetByID(ctx, "u1")
	if got.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", got.Role, model.RoleAdmin)
	}
	if err := users.UpdateRole(ctx, "missing", model.RoleAdmin); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateRole(missing) error = %v, want %v", err, ErrUserNotFound)
	}
}

func TestMemoryUserRepositoryConcurrentSignup(t *testing.T) {
	users, _ := NewMemoryRepositories()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := users.Create(context.Background(), &model.User{
				ID: fmt.Sprintf("u%d", i), Username: "alice", Email: "alice@example.com",
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
}

func newRecipe(id, owner string, category model.Category, minutes int, created time.Time, ingredients ...string) *model.Recipe {
	r := &model.Recipe{
		ID:          id,
		OwnerID:     owner,
		Title:       "Recipe " + id,
		Description: "A tasty dish",
		Steps:       []string{"cook"},
		CookingTime: minutes,
		Servings:    1,
		Difficulty:  model.DifficultyMedium,
		Category:    category,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, model.Ingredient{Name: name, Amount: 1, Unit: "pc"})
	}
	return r
}

func TestMemoryRecipeRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	users, recipes := NewMemoryRepositories()
	seedUser(t, users, "u1", "alice")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := newRecipe("r1", "u1", model.CategoryDinner, 30, base, "egg")

	if err := recipes.Create(ctx, newRecipe("r0", "ghost", model.CategoryDinner, 30, base)); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Create() with unknown owner error = %v, want %v", err, ErrUserNotFound)
	}
	if err := recipes.Create(ctx, rec); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	rec.Ingredients[0].Name = "mutated"

	got, err := recipes.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if got.OwnerUsername != "alice" {
		t.Errorf("OwnerUsername = %q, want %q", got.OwnerUsername, "alice")
	}
	if got.Ingredients[0].Name != "egg" {
		t.Errorf("Ingredients[0].Name = %q, want %q", got.Ingredients[0].Name, "egg")
	}

	got.Title = "Updated"
	got.OwnerID = "someone-else"
	if err := recipes.Update(ctx, got); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	got, _ = recipes.GetByID(ctx, "r1")
	if got.Title != "Updated" {
		t.Errorf("Title = %q, want %q", got.Title, "Updated")
	}
	if got.OwnerID != "u1" {
		t.Errorf("OwnerID = %q, want owner to be immutable", got.OwnerID)
	}

	if err := recipes.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := recipes.GetByID(ctx, "r1"); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("GetByID() after delete error = %v, want %v", err, ErrRecipeNotFound)
	}
	if err := recipes.Delete(ctx, "r1"); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, ErrRecipeNotFound)
	}
	if err := recipes.Update(ctx, got); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("Update() deleted error = %v, want %v", err, ErrRecipeNotFound)
	}
}

func TestMemoryRecipeRepositoryListAndStats(t *testing.T) {
	ctx := context.Background()
	users, recipes := NewMemoryRepositories()
	seedUser(t, users, "u1", "alice")
	seedUser(t, users, "u2", "bob")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []*model.Recipe{
		newRecipe("r1", "u1", model.CategoryDinner, 30, base, "egg", "salt"),
		newRecipe("r2", "u1", model.CategoryDinner, 60, base.Add(time.Hour), "Egg"),
		newRecipe("r3", "u1", model.CategoryDessert, 15, base.Add(2*time.Hour), "sugar", "egg"),
		newRecipe("r4", "u2", model.CategoryBreakfast, 10, base.Add(3*time.Hour), "Salt", "salt"),
	}
	seed[2].Tags = []string{"Chocolate"}
	for _, r := range seed {
		if err := recipes.Create(ctx, r); err != nil {
			t.Fatalf("Create(%s) unexpected error: %v", r.ID, err)
		}
	}

	tests := []struct {
		name    string
		filter  model.RecipeFilter
		wantIDs []string
		total   int
	}{
		{"all newest first", model.RecipeFilter{Page: 1, Limit: 10}, []string{"r4", "r3", "r2", "r1"}, 4},
		{"second page", model.RecipeFilter{Page: 2, Limit: 3}, []string{"r1"}, 4},
		{"past last page", model.RecipeFilter{Page: 5, Limit: 3}, []string{}, 4},
		{"category", model.RecipeFilter{Category: model.CategoryDinner, Page: 1, Limit: 10}, []string{"r2", "r1"}, 2},
		{"time window", model.RecipeFilter{MinTime: 15, MaxTime: 30, Page: 1, Limit: 10}, []string{"r3", "r1"}, 2},
		{"search tag case insensitive", model.RecipeFilter{Search: "chocolate", Page: 1, Limit: 10}, []string{"r3"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := recipes.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() unexpected error: %v", err)
			}
			if total != tt.total {
				t.Errorf("List() total = %d, want %d", total, tt.total)
			}
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if fmt.Sprint(ids) != fmt.Sprint(tt.wantIDs) {
				t.Errorf("List() ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}

	mine, _ := recipes.ListByOwner(ctx, "u2")
	if len(mine) != 1 || mine[0].ID != "r4" {
		t.Errorf("ListByOwner(u2) = %v, want [r4]", mine)
	}

	stats, _ := recipes.CategoryStats(ctx)
	if len(stats) != 3 || stats[0].Category != model.CategoryDinner || stats[0].Count != 2 || stats[0].AvgCookingTime != 45 {
		t.Errorf("CategoryStats() = %+v, want Dinner first with count 2 avg 45", stats)
	}

	popular, _ := recipes.PopularIngredients(ctx, 2)
	want := []model.IngredientCount{{Name: "egg", Count: 3}, {Name: "salt", Count: 2}}
	if fmt.Sprint(popular) != fmt.Sprint(want) {
		t.Errorf("PopularIngredients() = %v, want %v", popular, want)
	}

	owner, _ := recipes.OwnerStats(ctx, "u1")
	if owner.TotalRecipes != 3 || owner.CategoryCount != 2 || owner.AvgCookingTime != 35 {
		t.Errorf("OwnerStats(u1) = %+v, want 3 recipes, 2 categories, avg 35", owner)
	}
	empty, _ := recipes.OwnerStats(ctx, "nobody")
	if empty != (model.UserRecipeStats{}) {
		t.Errorf("OwnerStats(nobody) = %+v, want zero", empty)
	}
}
