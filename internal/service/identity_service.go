package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/repository/specification"
	"tria-chat-be/internal/repository/unitofwork"
	"tria-chat-be/pkg/events"
	"tria-chat-be/pkg/identity"

	"github.com/google/uuid"
)

type IIdentityService interface {
	BeginSignIn(ctx context.Context, provider string) (string, error)
	CompleteSignIn(ctx context.Context, provider, code, state string) (*dto.SignInResponse, error)
	Reconcile(ctx context.Context, ident identity.ExternalIdentity) (*entity.Account, error)
}

type identityService struct {
	uowFactory     unitofwork.RepositoryFactory
	providers      identity.Registry
	states         *identity.StateSigner
	sessions       ISessionService
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewIdentityService(
	uowFactory unitofwork.RepositoryFactory,
	providers identity.Registry,
	states *identity.StateSigner,
	sessions ISessionService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IIdentityService {
	return &identityService{
		uowFactory:     uowFactory,
		providers:      providers,
		states:         states,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

func (s *identityService) BeginSignIn(ctx context.Context, provider string) (string, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return "", err
	}

	state, err := s.states.Issue(p.Name())
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}

	return p.AuthCodeURL(state), nil
}

func (s *identityService) CompleteSignIn(ctx context.Context, provider, code, state string) (*dto.SignInResponse, error) {
	p, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}
	if err := s.states.Verify(state, p.Name()); err != nil {
		return nil, err
	}

	ident, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	account, err := s.Reconcile(ctx, *ident)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Issue(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("IDENTITY", "Account signed in", map[string]interface{}{
		"account_id": account.Id.String(),
		"provider":   p.Name(),
	})

	return &dto.SignInResponse{
		Token:     session.SessionToken,
		ExpiresAt: session.ExpiresAt,
		Account:   toAccountResponse(account),
	}, nil
}

// Reconcile finds the local account for an external identity by email,
// creating it on first sign-in. A changed, non-empty display name from the
// provider overwrites the stored one.
func (s *identityService) Reconcile(ctx context.Context, ident identity.ExternalIdentity) (*entity.Account, error) {
	email := ident.NormalizedEmail()
	if email == "" {
		return nil, ErrMissingEmail
	}
	name := strings.TrimSpace(ident.DisplayName)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.AccountRepository()

	account, err := repo.FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}

	if account == nil {
		now := s.now()
		account = &entity.Account{
			Id:        uuid.New(),
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if name != "" {
			account.DisplayName = &name
		}

		if err := repo.Create(ctx, account); err != nil {
			// A concurrent first sign-in may have won the unique email.
			existing, findErr := repo.FindOne(ctx, specification.ByEmail{Email: email})
			if findErr != nil || existing == nil {
				return nil, err
			}
			return existing, nil
		}

		publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.AccountCreated, map[string]interface{}{
			"account_id": account.Id.String(),
			"email":      account.Email,
			"provider":   ident.Provider,
		}))
		return account, nil
	}

	if name != "" && name != account.Name() {
		account.DisplayName = &name
		account.UpdatedAt = s.now()
		if err := repo.Update(ctx, account); err != nil {
			return nil, err
		}
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewEvent(events.AccountSignedIn, map[string]interface{}{
		"account_id": account.Id.String(),
		"provider":   ident.Provider,
	}))
	return account, nil
}

func toAccountResponse(a *entity.Account) dto.AccountResponse {
	return dto.AccountResponse{
		Id:          a.Id,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
