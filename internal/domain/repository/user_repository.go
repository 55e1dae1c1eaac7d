package repository

import (
	"context"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
)

// UserRepository reads and creates billing accounts. Lookups return
// (nil, nil) when no row matches.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}
