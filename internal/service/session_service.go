package service

import (
	"context"
	"time"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/repository/specification"
	"tria-chat-be/internal/repository/unitofwork"
	"tria-chat-be/pkg/events"

	"github.com/google/uuid"
)

type ISessionService interface {
	Issue(ctx context.Context, account *entity.Account) (*entity.Session, error)
	Validate(ctx context.Context, token string) (*entity.SessionContext, error)
	SignOut(ctx context.Context, session *entity.SessionContext) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	lifetime       time.Duration
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	lifetime time.Duration,
	eventPublisher events.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		lifetime:       lifetime,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

// Issue creates a session with a fixed lifetime and an opaque random token.
func (s *sessionService) Issue(ctx context.Context, account *entity.Account) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now()

	session := entity.Session{
		Id:           uuid.New(),
		AccountId:    account.Id,
		SessionToken: uuid.NewString(),
		ExpiresAt:    now.Add(s.lifetime),
		CreatedAt:    now,
	}
	if err := uow.SessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// Validate resolves a bearer token to its account. Expired sessions are
// deleted on sight.
func (s *sessionService) Validate(ctx context.Context, token string) (*entity.SessionContext, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.BySessionToken{Token: token})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	if session.IsExpired(s.now()) {
		if err := uow.SessionRepository().Delete(ctx, session.Id); err != nil {
			s.logger.Warn("SESSION", "Failed to delete expired session", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      err.Error(),
			})
		}
		return nil, ErrInvalidSession
	}

	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: session.AccountId})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidSession
	}

	return &entity.SessionContext{Account: account, Session: session}, nil
}

func (s *sessionService) SignOut(ctx context.Context, session *entity.SessionContext) error {
	if !session.IsAuthenticated() || session.Session == nil {
		return ErrUnauthenticated
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Delete(ctx, session.Session.Id); err != nil {
		return err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.AccountSignedOut, map[string]interface{}{
		"account_id": session.AccountID().String(),
	}))
	return nil
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRepository().DeleteExpired(ctx, s.now())
}
