package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/recipebox/recipebox-go/internal/model"
)

// memoryDB is the shared state behind the in-memory repositories. Users and
// recipes live under one lock so owner lookups and cascades stay consistent.
type memoryDB struct {
	mu      sync.RWMutex
	users   map[string]model.User
	recipes map[string]model.Recipe
}

// MemoryUserRepository is a UserRepository kept in process memory.
type MemoryUserRepository struct {
	db *memoryDB
}

// MemoryRecipeRepository is a RecipeRepository kept in process memory.
type MemoryRecipeRepository struct {
	db *memoryDB
}

// NewMemoryRepositories returns user and recipe repositories sharing one
// in-memory database.
func NewMemoryRepositories() (*MemoryUserRepository, *MemoryRecipeRepository) {
	db := &memoryDB{
		users:   make(map[string]model.User),
		recipes: make(map[string]model.Recipe),
	}
	return &MemoryUserRepository{db: db}, &MemoryRecipeRepository{db: db}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.users[user.ID]; exists {
		return ErrDuplicateUser
	}
	for _, u := range r.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicateUser
		}
	}
	r.db.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) UpdateRole(_ context.Context, id string, role model.Role) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	r.db.users[id] = u
	return nil
}

func (r *MemoryRecipeRepository) Create(_ context.Context, recipe *model.Recipe) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[recipe.OwnerID]; !ok {
		return ErrUserNotFound
	}
	r.db.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

func (r *MemoryRecipeRepository) GetByID(_ context.Context, id string) (*model.Recipe, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	recipe, ok := r.db.recipes[id]
	if !ok {
		return nil, ErrRecipeNotFound
	}
	out := r.withOwner(recipe)
	return &out, nil
}

func (r *MemoryRecipeRepository) List(_ context.Context, filter model.RecipeFilter) ([]model.Recipe, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := r.collect(func(rec model.Recipe) bool { return matchesFilter(rec, filter) })
	total := len(matched)

	start := min(filter.Offset(), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *MemoryRecipeRepository) ListByOwner(_ context.Context, ownerID string) ([]model.Recipe, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return r.collect(func(rec model.Recipe) bool { return rec.OwnerID == ownerID }), nil
}

func (r *MemoryRecipeRepository) Update(_ context.Context, recipe *model.Recipe) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.recipes[recipe.ID]
	if !ok {
		return ErrRecipeNotFound
	}
	updated := cloneRecipe(*recipe)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	r.db.recipes[recipe.ID] = updated
	return nil
}

func (r *MemoryRecipeRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.recipes[id]; !ok {
		return ErrRecipeNotFound
	}
	delete(r.db.recipes, id)
	return nil
}

func (r *MemoryRecipeRepository) CategoryStats(_ context.Context) ([]model.CategoryStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	totals := make(map[model.Category]*model.CategoryStats)
	for _, rec := range r.db.recipes {
		s, ok := totals[rec.Category]
		if !ok {
			s = &model.CategoryStats{Category: rec.Category}
			totals[rec.Category] = s
		}
		s.Count++
		s.AvgCookingTime += float64(rec.CookingTime)
	}

	stats := make([]model.CategoryStats, 0, len(totals))
	for _, s := range totals {
		s.AvgCookingTime /= float64(s.Count)
		stats = append(stats, *s)
	}
	slices.SortFunc(stats, func(a, b model.CategoryStats) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return stats, nil
}

func (r *MemoryRecipeRepository) PopularIngredients(_ context.Context, limit int) ([]model.IngredientCount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range r.db.recipes {
		seen := make(map[string]bool, len(rec.Ingredients))
		for _, ing := range rec.Ingredients {
			name := strings.ToLower(ing.Name)
			if seen[name] {
				continue
			}
			seen[name] = true
			counts[name]++
		}
	}

	out := make([]model.IngredientCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.IngredientCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b model.IngredientCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRecipeRepository) OwnerStats(_ context.Context, ownerID string) (model.UserRecipeStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var (
		stats      model.UserRecipeStats
		categories = make(map[model.Category]bool)
		totalTime  int
	)
	for _, rec := range r.db.recipes {
		if rec.OwnerID != ownerID {
			continue
		}
		stats.TotalRecipes++
		categories[rec.Category] = true
		totalTime += rec.CookingTime
	}
	stats.CategoryCount = len(categories)
	if stats.TotalRecipes > 0 {
		stats.AvgCookingTime = float64(totalTime) / float64(stats.TotalRecipes)
	}
	return stats, nil
}

// collect returns matching recipes newest first. Callers hold the read lock.
func (r *MemoryRecipeRepository) collect(keep func(model.Recipe) bool) []model.Recipe {
	out := []model.Recipe{}
	for _, rec := range r.db.recipes {
		if keep(rec) {
			out = append(out, r.withOwner(rec))
		}
	}
	slices.SortFunc(out, func(a, b model.Recipe) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (r *MemoryRecipeRepository) withOwner(rec model.Recipe) model.Recipe {
	out := cloneRecipe(rec)
	if owner, ok := r.db.users[rec.OwnerID]; ok {
		out.OwnerUsername = owner.Username
	}
	return out
}

func matchesFilter(rec model.Recipe, f model.RecipeFilter) bool {
	if f.Category != "" && rec.Category != f.Category {
		return false
	}
	if f.MinTime > 0 && rec.CookingTime < f.MinTime {
		return false
	}
	if f.MaxTime > 0 && rec.CookingTime > f.MaxTime {
		return false
	}
	if f.Search == "" {
		return true
	}

	text := strings.ToLower(rec.Title + " " + rec.Description + " " + strings.Join(rec.Tags, " "))
	for _, term := range strings.Fields(strings.ToLower(f.Search)) {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func cloneRecipe(r model.Recipe) model.Recipe {
	r.Ingredients = slices.Clone(r.Ingredients)
	r.Steps = slices.Clone(r.Steps)
	r.Tags = slices.Clone(r.Tags)
	return r
}
