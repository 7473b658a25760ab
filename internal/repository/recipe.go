package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/recipebox/recipebox-go/internal/model"
)

var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeRepository handles recipe persistence operations.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

const recipeSelect = `SELECT r.id, r.owner_id, u.username, r.title, r.description,
		r.ingredients, r.steps, r.tags, r.cooking_time, r.servings, r.difficulty,
		r.category, r.image_url, r.created_at, r.updated_at
	FROM recipes r JOIN users u ON u.id = r.owner_id`

// recipeRow holds the JSON columns until they are decoded.
type recipeRow struct {
	recipe      model.Recipe
	ingredients []byte
	steps       []byte
	tags        []byte
}

func (row *recipeRow) dest() []any {
	r := &row.recipe
	return []any{
		&r.ID, &r.OwnerID, &r.OwnerUsername, &r.Title, &r.Description,
		&row.ingredients, &row.steps, &row.tags, &r.CookingTime, &r.Servings, &r.Difficulty,
		&r.Category, &r.ImageURL, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (row *recipeRow) decode() (model.Recipe, error) {
	r := row.recipe
	if err := json.Unmarshal(row.ingredients, &r.Ingredients); err != nil {
		return r, fmt.Errorf("decoding ingredients of recipe %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(row.steps, &r.Steps); err != nil {
		return r, fmt.Errorf("decoding steps of recipe %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(row.tags, &r.Tags); err != nil {
		return r, fmt.Errorf("decoding tags of recipe %s: %w", r.ID, err)
	}
	return r, nil
}

// encodedRecipe is the column form of the recipe's list fields.
type encodedRecipe struct {
	ingredients []byte
	steps       []byte
	tags        []byte
	tagsText    string
}

func encodeRecipe(r *model.Recipe) (encodedRecipe, error) {
	var (
		enc encodedRecipe
		err error
	)
	if enc.ingredients, err = json.Marshal(nonNil(r.Ingredients)); err != nil {
		return enc, err
	}
	if enc.steps, err = json.Marshal(nonNil(r.Steps)); err != nil {
		return enc, err
	}
	if enc.tags, err = json.Marshal(nonNil(r.Tags)); err != nil {
		return enc, err
	}
	enc.tagsText = strings.Join(r.Tags, " ")
	return enc, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Create inserts a new recipe.
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	enc, err := encodeRecipe(recipe)
	if err != nil {
		return err
	}

	query := `INSERT INTO recipes (id, owner_id, title, description, ingredients, steps, tags, tags_text,
			cooking_time, servings, difficulty, category, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		recipe.ID, recipe.OwnerID, recipe.Title, recipe.Description,
		enc.ingredients, enc.steps, enc.tags, enc.tagsText,
		recipe.CookingTime, recipe.Servings, recipe.Difficulty, recipe.Category, recipe.ImageURL,
		recipe.CreatedAt, recipe.UpdatedAt,
	)
	return err
}

// GetByID retrieves a recipe together with its owner's username.
func (r *RecipeRepository) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	var row recipeRow
	err := r.db.QueryRowContext(ctx, recipeSelect+` WHERE r.id = ?`, id).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	recipe, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns one page of recipes matching filter, newest first, and the
// total number of matches.
func (r *RecipeRepository) List(ctx context.Context, filter model.RecipeFilter) ([]model.Recipe, int, error) {
	where, args := filterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM recipes r` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Recipe{}, 0, nil
	}

	query := recipeSelect + where + ` ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset())

	recipes, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func filterClause(filter model.RecipeFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Search != "" {
		conds = append(conds, `MATCH(r.title, r.description, r.tags_text) AGAINST (? IN NATURAL LANGUAGE MODE)`)
		args = append(args, filter.Search)
	}
	if filter.Category != "" {
		conds = append(conds, `r.category = ?`)
		args = append(args, filter.Category)
	}
	if filter.MinTime > 0 {
		conds = append(conds, `r.cooking_time >= ?`)
		args = append(args, filter.MinTime)
	}
	if filter.MaxTime > 0 {
		conds = append(conds, `r.cooking_time <= ?`)
		args = append(args, filter.MaxTime)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListByOwner retrieves all recipes created by a user, newest first.
func (r *RecipeRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Recipe, error) {
	return r.query(ctx, recipeSelect+` WHERE r.owner_id = ? ORDER BY r.created_at DESC, r.id`, ownerID)
}

func (r *RecipeRepository) query(ctx context.Context, query string, args ...any) ([]model.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []model.Recipe{}
	for rows.Next() {
		var row recipeRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		recipe, err := row.decode()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}

	return recipes, rows.Err()
}

// Update overwrites the mutable fields of a recipe. The owner is never changed.
func (r *RecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	enc, err := encodeRecipe(recipe)
	if err != nil {
		return err
	}

	query := `UPDATE recipes SET title = ?, description = ?, ingredients = ?, steps = ?, tags = ?,
			tags_text = ?, cooking_time = ?, servings = ?, difficulty = ?, category = ?, image_url = ?,
			updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		recipe.Title, recipe.Description, enc.ingredients, enc.steps, enc.tags, enc.tagsText,
		recipe.CookingTime, recipe.Servings, recipe.Difficulty, recipe.Category, recipe.ImageURL,
		recipe.UpdatedAt, recipe.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// Delete removes a recipe.
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// CategoryStats counts recipes per category, most populated first.
func (r *RecipeRepository) CategoryStats(ctx context.Context) ([]model.CategoryStats, error) {
	query := `SELECT category, COUNT(*) AS cnt, AVG(cooking_time)
		FROM recipes GROUP BY category ORDER BY cnt DESC, category`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []model.CategoryStats{}
	for rows.Next() {
		var s model.CategoryStats
		if err := rows.Scan(&s.Category, &s.Count, &s.AvgCookingTime); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// PopularIngredients returns the limit ingredient names used by the most recipes.
// Names are compared case-insensitively and returned lower-cased.
func (r *RecipeRepository) PopularIngredients(ctx context.Context, limit int) ([]model.IngredientCount, error) {
	query := `SELECT LOWER(j.name) AS ingredient, COUNT(DISTINCT r.id) AS cnt
		FROM recipes r,
			JSON_TABLE(r.ingredients, '$[*]' COLUMNS (name VARCHAR(255) PATH '$.name')) AS j
		GROUP BY ingredient
		ORDER BY cnt DESC, ingredient
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []model.IngredientCount{}
	for rows.Next() {
		var c model.IngredientCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// OwnerStats summarizes the recipes created by one user.
func (r *RecipeRepository) OwnerStats(ctx context.Context, ownerID string) (model.UserRecipeStats, error) {
	query := `SELECT COUNT(*), COUNT(DISTINCT category), COALESCE(AVG(cooking_time), 0)
		FROM recipes WHERE owner_id = ?`

	var stats model.UserRecipeStats
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&stats.TotalRecipes, &stats.CategoryCount, &stats.AvgCookingTime,
	)
	return stats, err
}
