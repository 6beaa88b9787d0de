package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/pkg/mailer"
	"tria-chat-be/internal/repository/contract"
	"tria-chat-be/internal/repository/specification"
	"tria-chat-be/internal/repository/unitofwork"
)

const DeleteAccountMessage = "Account deletion is handled by our support team. Please contact support to delete your account."

type IUserService interface {
	GetProfile(ctx context.Context, session *entity.SessionContext) (*dto.AccountResponse, error)
	UpdateProfile(ctx context.Context, session *entity.SessionContext, req *dto.UpdateProfileRequest) (*dto.AccountResponse, error)
	DeleteAccount(ctx context.Context, session *entity.SessionContext) (*dto.DeleteAccountResponse, error)
	Export(ctx context.Context, session *entity.SessionContext, sendEmail bool) (*dto.ExportResponse, error)
}

type userService struct {
	uowFactory    unitofwork.RepositoryFactory
	conversations IConversationService
	emailService  mailer.IEmailService
	logger        logger.ILogger
	now           func() time.Time
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	conversations IConversationService,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory:    uowFactory,
		conversations: conversations,
		emailService:  emailService,
		logger:        log,
		now:           time.Now,
	}
}

func (s *userService) GetProfile(ctx context.Context, session *entity.SessionContext) (*dto.AccountResponse, error) {
	account, err := s.loadAccount(ctx, session)
	if err != nil {
		return nil, err
	}
	res := toAccountResponse(account)
	return &res, nil
}

// UpdateProfile treats a blank display name as no change.
func (s *userService) UpdateProfile(ctx context.Context, session *entity.SessionContext, req *dto.UpdateProfileRequest) (*dto.AccountResponse, error) {
	account, err := s.loadAccount(ctx, session)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.DisplayName)
	if name != "" && name != account.Name() {
		account.DisplayName = &name
		account.UpdatedAt = s.now()

		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.AccountRepository().Update(ctx, account); err != nil {
			if errors.Is(err, contract.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
	}

	res := toAccountResponse(account)
	return &res, nil
}

// DeleteAccount never deletes anything.
func (s *userService) DeleteAccount(ctx context.Context, session *entity.SessionContext) (*dto.DeleteAccountResponse, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	s.logger.Info("USER", "Account deletion requested", map[string]interface{}{
		"account_id": session.AccountID().String(),
	})
	return &dto.DeleteAccountResponse{Message: DeleteAccountMessage}, nil
}

// Export builds the data export. With sendEmail it is also mailed as a JSON
// attachment when SMTP is configured; mail failures only clear Emailed.
func (s *userService) Export(ctx context.Context, session *entity.SessionContext, sendEmail bool) (*dto.ExportResponse, error) {
	export, err := s.conversations.Export(ctx, session)
	if err != nil {
		return nil, err
	}
	if !sendEmail {
		return export, nil
	}

	if !s.emailService.Enabled() {
		s.logger.Warn("USER", "Export email requested but SMTP is not configured", nil)
		return export, nil
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("chat-export-%s.json", export.ExportedAt.Format("2006-01-02"))
	if err := s.emailService.SendTranscriptExport(session.Account.Email, session.Account.Name(), filename, data); err != nil {
		s.logger.Error("USER", "Failed to email export", map[string]interface{}{
			"account_id": session.AccountID().String(),
			"error":      err.Error(),
		})
		return export, nil
	}

	export.Emailed = true
	return export, nil
}

// loadAccount re-reads the account so profile responses reflect the store
// rather than the snapshot taken when the session was validated.
func (s *userService) loadAccount(ctx context.Context, session *entity.SessionContext) (*entity.Account, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	account, err := uow.AccountRepository().FindOne(ctx, specification.ByID{ID: session.AccountID()})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
