package unitofwork

import (
	"context"

	"tria-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() contract.AccountRepository
	SessionRepository() contract.SessionRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
}
