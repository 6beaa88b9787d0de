package contract

import (
	"context"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/repository/specification"
)

// AccountRepository has no Delete. Accounts are never hard-deleted.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	Update(ctx context.Context, account *entity.Account) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Account, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Account, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
