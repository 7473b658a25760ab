package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Category string

const (
	CategoryBreakfast Category = "Breakfast"
	CategoryLunch     Category = "Lunch"
	CategoryDinner    Category = "Dinner"
	CategoryDessert   Category = "Dessert"
	CategorySnack     Category = "Snack"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner, CategoryDessert, CategorySnack:
		return true
	}
	return false
}

type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Recipe represents a recipe in the database. OwnerID is fixed at creation.
type Recipe struct {
	ID            string
	OwnerID       string
	OwnerUsername string
	Title         string
	Description   string
	Ingredients   []Ingredient
	Steps         []string
	CookingTime   int
	Servings      int
	Difficulty    Difficulty
	Category      Category
	Tags          []string
	ImageURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecipeRequest is the body of create and update requests.
type RecipeRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	CookingTime int          `json:"cookingTime"`
	Servings    int          `json:"servings"`
	Difficulty  Difficulty   `json:"difficulty"`
	Category    Category     `json:"category"`
	Tags        []string     `json:"tags"`
	ImageURL    string       `json:"imageUrl"`
}

type RecipeOwner struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// RecipeResponse represents a recipe in API responses.
type RecipeResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	CookingTime int          `json:"cookingTime"`
	Servings    int          `json:"servings"`
	Difficulty  Difficulty   `json:"difficulty"`
	Category    Category     `json:"category"`
	Tags        []string     `json:"tags"`
	ImageURL    string       `json:"imageUrl"`
	CreatedBy   RecipeOwner  `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// RecipeFilter narrows a recipe listing. Zero values mean "no constraint".
type RecipeFilter struct {
	Search   string
	Category Category
	MinTime  int
	MaxTime  int
	Page     int
	Limit    int
}

// Offset returns the number of rows to skip for the filter's page.
func (f RecipeFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

type RecipePage struct {
	Results    []RecipeResponse `json:"results"`
	Pagination Pagination       `json:"pagination"`
}

type CategoryStats struct {
	Category       Category `json:"category"`
	Count          int      `json:"count"`
	AvgCookingTime float64  `json:"avg_cooking_time"`
}

type IngredientCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type UserRecipeStats struct {
	TotalRecipes   int     `json:"total_recipes"`
	CategoryCount  int     `json:"category_count"`
	AvgCookingTime float64 `json:"avg_cooking_time"`
}

// ImageUploadResponse carries a presigned URL the client PUTs the image to.
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
