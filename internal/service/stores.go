package service

import (
	"context"

	"github.com/recipebox/recipebox-go/internal/model"
)

// UserStore is the user persistence the services depend on. Implemented by
// repository.UserRepository and repository.MemoryUserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
}

// RecipeStore is the recipe persistence the services depend on.
type RecipeStore interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
	List(ctx context.Context, filter model.RecipeFilter) ([]model.Recipe, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Recipe, error)
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, id string) error
	CategoryStats(ctx context.Context) ([]model.CategoryStats, error)
	PopularIngredients(ctx context.Context, limit int) ([]model.IngredientCount, error)
	OwnerStats(ctx context.Context, ownerID string) (model.UserRecipeStats, error)
}
