package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/repository/unitofwork"
	"tria-chat-be/pkg/persona"
	"tria-chat-be/pkg/store"

	"github.com/google/uuid"
)

// TurnRunner is satisfied by *persona.Orchestrator.
type TurnRunner interface {
	SendTurn(ctx context.Context, req persona.TurnRequest) (*persona.TurnResult, error)
}

type IChatService interface {
	SendMessage(ctx context.Context, session *entity.SessionContext, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Models() []persona.Model
	Personas() []dto.PersonaPairResponse
}

type ChatServiceConfig struct {
	DefaultModel  string
	ContextWindow int
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	orchestrator     TurnRunner
	turns            *persona.TurnQueue
	guests           store.GuestStore
	publisherService IPublisherService
	cfg              ChatServiceConfig
	logger           logger.ILogger
	now              func() time.Time
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator TurnRunner,
	turns *persona.TurnQueue,
	guests store.GuestStore,
	publisherService IPublisherService,
	cfg ChatServiceConfig,
	log logger.ILogger,
) IChatService {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 5
	}
	return &chatService{
		uowFactory:       uowFactory,
		orchestrator:     orchestrator,
		turns:            turns,
		guests:           guests,
		publisherService: publisherService,
		cfg:              cfg,
		logger:           log,
		now:              time.Now,
	}
}

// SendMessage runs one turn. Authenticated callers write to a persisted
// conversation, created on the first turn when no id is given. Guests write
// to the guest store under their guest id.
func (s *chatService) SendMessage(ctx context.Context, session *entity.SessionContext, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if req.ChatType != "" && !persona.IsChatType(req.ChatType) {
		return nil, ErrInvalidChatType
	}
	model := persona.ResolveModel(req.Model, s.cfg.DefaultModel)

	if session.IsAuthenticated() {
		return s.sendPersisted(ctx, session, req, text, model)
	}
	return s.sendGuest(ctx, req, text, model)
}

func (s *chatService) sendPersisted(ctx context.Context, session *entity.SessionContext, req *dto.SendMessageRequest, text, model string) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var conversation *entity.Conversation
	var err error
	created := false
	if req.ConversationId != nil {
		conversation, err = findOwnedConversation(ctx, uow, session.AccountID(), *req.ConversationId)
		if err != nil {
			return nil, err
		}
		if req.ChatType != "" && req.ChatType != conversation.ChatType {
			return nil, ErrChatTypeMismatch
		}
	} else {
		chatType := req.ChatType
		if chatType == "" {
			chatType = persona.ChatTypeDualPersona
		}
		conversation, err = createConversation(ctx, uow, session.AccountID(), "", chatType, s.now())
		if err != nil {
			return nil, err
		}
		created = true
	}

	completed := false
	defer func() {
		if created && !completed {
			s.discardConversation(ctx, conversation.Id)
		}
	}()

	pair, _ := persona.PairFor(conversation.ChatType)

	release, err := s.turns.Acquire(ctx, "conversation:"+conversation.Id.String())
	if err != nil {
		return nil, err
	}
	defer release()

	messages, err := loadRecentMessages(ctx, uow, conversation.Id, s.cfg.ContextWindow)
	if err != nil {
		return nil, err
	}
	history := make([]persona.Entry, 0, len(messages))
	for _, m := range messages {
		history = append(history, persona.Entry{Sender: m.Sender, Content: m.Content, Timestamp: m.CreatedAt})
	}

	accountId := session.AccountID()
	sink := persona.SinkFunc(func(ctx context.Context, entry persona.Entry) error {
		payload := dto.PublishTranscriptEntryMessage{
			ConversationId: conversation.Id,
			Sender:         entry.Sender,
			Content:        entry.Content,
			CreatedAt:      entry.Timestamp,
		}
		if entry.Sender == persona.SenderUser {
			payload.AccountId = &accountId
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		return s.publisherService.Publish(ctx, data)
	})

	result, err := s.runTurn(ctx, persona.TurnRequest{
		History:  history,
		UserText: text,
		Model:    model,
		Pair:     pair,
		Sink:     sink,
	})
	if err != nil {
		return nil, err
	}
	completed = true

	conversationId := conversation.Id
	return toSendMessageResponse(result, &conversationId, "", conversation.ChatType, model), nil
}

func (s *chatService) sendGuest(ctx context.Context, req *dto.SendMessageRequest, text, model string) (*dto.SendMessageResponse, error) {
	if req.ConversationId != nil {
		return nil, ErrUnauthenticated
	}

	guestId := req.GuestId
	if guestId == "" {
		guestId = uuid.NewString()
	}

	release, err := s.turns.Acquire(ctx, "guest:"+guestId)
	if err != nil {
		return nil, err
	}
	defer release()

	chatType := req.ChatType
	var history []persona.Entry

	transcript, err := s.guests.Get(ctx, guestId)
	switch {
	case err == nil:
		if chatType != "" && chatType != transcript.ChatType {
			return nil, ErrChatTypeMismatch
		}
		chatType = transcript.ChatType
		history = transcript.Entries
	case errors.Is(err, store.ErrGuestNotFound):
		if chatType == "" {
			chatType = persona.ChatTypeDualPersona
		}
	default:
		return nil, err
	}

	pair, _ := persona.PairFor(chatType)
	sink := persona.SinkFunc(func(ctx context.Context, entry persona.Entry) error {
		return s.guests.Append(ctx, guestId, chatType, entry)
	})

	result, err := s.runTurn(ctx, persona.TurnRequest{
		History:  history,
		UserText: text,
		Model:    model,
		Pair:     pair,
		Sink:     sink,
	})
	if err != nil {
		return nil, err
	}

	return toSendMessageResponse(result, nil, guestId, chatType, model), nil
}

func (s *chatService) runTurn(ctx context.Context, req persona.TurnRequest) (*persona.TurnResult, error) {
	started := s.now()
	result, err := s.orchestrator.SendTurn(ctx, req)
	if err != nil {
		if errors.Is(err, persona.ErrEmptyUtterance) {
			return nil, ErrEmptyMessage
		}
		s.logger.Error("CHAT", "Turn aborted", map[string]interface{}{
			"chat_type": req.Pair.ChatType,
			"emitted":   len(resultEntries(result)),
			"error":     err.Error(),
		})
		return nil, err
	}

	s.logger.Info("CHAT", "Turn completed", map[string]interface{}{
		"chat_type":   req.Pair.ChatType,
		"model":       req.Model,
		"live_info":   result.LiveInfo,
		"duration_ms": s.now().Sub(started).Milliseconds(),
	})
	return result, nil
}

// discardConversation removes a conversation created for a turn that never
// completed. It is detached from ctx so a cancelled request still cleans up.
func (s *chatService) discardConversation(ctx context.Context, id uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	details := map[string]interface{}{"conversation_id": id.String()}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		details["error"] = err.Error()
		s.logger.Error("CHAT", "Failed to discard conversation", details)
		return
	}
	defer uow.Rollback()

	err := uow.MessageRepository().DeleteByConversationID(ctx, id)
	if err == nil {
		err = uow.ConversationRepository().Delete(ctx, id)
	}
	if err == nil {
		err = uow.Commit()
	}
	if err != nil {
		details["error"] = err.Error()
		s.logger.Error("CHAT", "Failed to discard conversation", details)
		return
	}
	s.logger.Info("CHAT", "Discarded conversation of aborted turn", details)
}

func (s *chatService) Models() []persona.Model {
	return persona.Models()
}

func (s *chatService) Personas() []dto.PersonaPairResponse {
	pairs := persona.Pairs()
	res := make([]dto.PersonaPairResponse, 0, len(pairs))
	for _, p := range pairs {
		res = append(res, dto.PersonaPairResponse{
			ChatType:  p.ChatType,
			UserLabel: p.UserLabel,
			Personas: []dto.PersonaSpeaker{
				{Sender: p.First.Sender, Label: p.First.Label},
				{Sender: p.Second.Sender, Label: p.Second.Label},
			},
		})
	}
	return res
}

func resultEntries(result *persona.TurnResult) []persona.Entry {
	if result == nil {
		return nil
	}
	return result.Entries
}

func toSendMessageResponse(result *persona.TurnResult, conversationId *uuid.UUID, guestId, chatType, model string) *dto.SendMessageResponse {
	res := &dto.SendMessageResponse{
		ConversationId: conversationId,
		GuestId:        guestId,
		ChatType:       chatType,
		Model:          model,
		LiveInfo:       result.LiveInfo,
		Messages:       make([]dto.TranscriptEntryResponse, 0, len(result.Entries)),
	}
	for _, e := range result.Entries {
		res.Messages = append(res.Messages, dto.TranscriptEntryResponse{
			Sender:    e.Sender,
			Content:   e.Content,
			Timestamp: e.Timestamp,
		})
	}
	return res
}
