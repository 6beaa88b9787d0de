package contract

import (
	"context"
	"time"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
}
