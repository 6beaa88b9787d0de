package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/repository/contract"
	"tria-chat-be/internal/repository/specification"
	"tria-chat-be/internal/repository/unitofwork"
	"tria-chat-be/pkg/events"
	"tria-chat-be/pkg/persona"

	"github.com/google/uuid"
)

const (
	MessagePageSize     = 50
	HistoryLimitByType  = 50
	HistoryLimitAllType = 100
)

type IConversationService interface {
	Create(ctx context.Context, session *entity.SessionContext, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	List(ctx context.Context, session *entity.SessionContext, chatType string) ([]*dto.ConversationResponse, error)
	Rename(ctx context.Context, session *entity.SessionContext, id uuid.UUID, req *dto.RenameConversationRequest) (*dto.ConversationResponse, error)
	Delete(ctx context.Context, session *entity.SessionContext, id uuid.UUID) error
	Messages(ctx context.Context, session *entity.SessionContext, id uuid.UUID) ([]*dto.MessageResponse, error)
	History(ctx context.Context, session *entity.SessionContext, chatType string, limit int) ([]*dto.HistoryItemResponse, error)
	AllHistory(ctx context.Context, session *entity.SessionContext, limit int) ([]*dto.HistoryItemResponse, error)
	Export(ctx context.Context, session *entity.SessionContext) (*dto.ExportResponse, error)
}

type conversationService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
		now:            time.Now,
	}
}

// DefaultTitle is used when a conversation is created without a title.
func DefaultTitle(pair persona.Pair, at time.Time) string {
	return fmt.Sprintf("%s %s", pair.TitlePrefix, at.Format("Jan 2 15:04"))
}

func (c *conversationService) Create(ctx context.Context, session *entity.SessionContext, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	conversation, err := createConversation(ctx, c.uowFactory.NewUnitOfWork(ctx), session.AccountID(), req.Title, req.ChatType, c.now())
	if err != nil {
		return nil, err
	}
	res := toConversationResponse(conversation)
	return &res, nil
}

// createConversation is shared with the chat service, which creates a
// conversation lazily on the first turn.
func createConversation(ctx context.Context, uow unitofwork.UnitOfWork, accountId uuid.UUID, title, chatType string, now time.Time) (*entity.Conversation, error) {
	pair, ok := persona.PairFor(chatType)
	if !ok {
		return nil, ErrInvalidChatType
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle(pair, now)
	}

	conversation := entity.Conversation{
		Id:        uuid.New(),
		AccountId: accountId,
		Title:     title,
		ChatType:  chatType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (c *conversationService) List(ctx context.Context, session *entity.SessionContext, chatType string) ([]*dto.ConversationResponse, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	specs := []specification.Specification{
		specification.AccountOwnedBy{AccountID: session.AccountID()},
		specification.OrderBy{Field: "updated_at", Desc: true},
	}
	if chatType != "" {
		if !persona.IsChatType(chatType) {
			return nil, ErrInvalidChatType
		}
		specs = append(specs, specification.ByChatType{ChatType: chatType})
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		item := toConversationResponse(conversation)
		res = append(res, &item)
	}
	return res, nil
}

// Rename ignores a blank title and returns the conversation unchanged.
func (c *conversationService) Rename(ctx context.Context, session *entity.SessionContext, id uuid.UUID, req *dto.RenameConversationRequest) (*dto.ConversationResponse, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversation, err := findOwnedConversation(ctx, uow, session.AccountID(), id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title != "" {
		conversation.Title = title
		conversation.UpdatedAt = c.now()
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			if errors.Is(err, contract.ErrRecordNotFound) {
				return nil, ErrConversationNotFound
			}
			return nil, err
		}
	}

	res := toConversationResponse(conversation)
	return &res, nil
}

// Delete removes the messages and then the conversation in one transaction.
func (c *conversationService) Delete(ctx context.Context, session *entity.SessionContext, id uuid.UUID) error {
	if !session.IsAuthenticated() {
		return ErrUnauthenticated
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	conversation, err := findOwnedConversation(ctx, uow, session.AccountID(), id)
	if err != nil {
		return err
	}

	if err := uow.MessageRepository().DeleteByConversationID(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	publishEvent(ctx, c.eventPublisher, c.logger, events.NewEvent(events.ConversationDeleted, map[string]interface{}{
		"account_id":      session.AccountID().String(),
		"conversation_id": conversation.Id.String(),
		"chat_type":       conversation.ChatType,
	}))
	return nil
}

// Messages returns the newest page of messages in ascending order.
func (c *conversationService) Messages(ctx context.Context, session *entity.SessionContext, id uuid.UUID) ([]*dto.MessageResponse, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversation, err := findOwnedConversation(ctx, uow, session.AccountID(), id)
	if err != nil {
		return nil, err
	}

	messages, err := loadRecentMessages(ctx, uow, conversation.Id, MessagePageSize)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		item := toMessageResponse(m)
		res = append(res, &item)
	}
	return res, nil
}

// History returns the account's latest messages across conversations in
// ascending order. An empty chatType covers every chat type with a larger
// default limit.
func (c *conversationService) History(ctx context.Context, session *entity.SessionContext, chatType string, limit int) ([]*dto.HistoryItemResponse, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if chatType != "" && !persona.IsChatType(chatType) {
		return nil, ErrInvalidChatType
	}

	maxLimit := HistoryLimitAllType
	if chatType != "" {
		maxLimit = HistoryLimitByType
	}
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.MessageRepository().FindHistory(ctx, session.AccountID(), chatType, limit)
	if err != nil {
		return nil, err
	}

	// items are newest first so the limit keeps the latest ones.
	res := make([]*dto.HistoryItemResponse, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		res = append(res, &dto.HistoryItemResponse{
			MessageResponse:   toMessageResponse(&item.Message),
			ConversationTitle: item.ConversationTitle,
			ChatType:          item.ChatType,
		})
	}
	return res, nil
}

func (c *conversationService) AllHistory(ctx context.Context, session *entity.SessionContext, limit int) ([]*dto.HistoryItemResponse, error) {
	return c.History(ctx, session, "", limit)
}

// Export collects the account with every conversation and all of its
// messages in ascending order.
func (c *conversationService) Export(ctx context.Context, session *entity.SessionContext) (*dto.ExportResponse, error) {
	if !session.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.AccountOwnedBy{AccountID: session.AccountID()},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	export := &dto.ExportResponse{
		ExportedAt:    c.now(),
		Account:       toAccountResponse(session.Account),
		Conversations: make([]dto.ExportConversation, 0, len(conversations)),
	}
	for _, conversation := range conversations {
		messages, err := uow.MessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conversation.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, err
		}

		item := dto.ExportConversation{
			ConversationResponse: toConversationResponse(conversation),
			Messages:             make([]dto.MessageResponse, 0, len(messages)),
		}
		for _, m := range messages {
			item.Messages = append(item.Messages, toMessageResponse(m))
		}
		export.Conversations = append(export.Conversations, item)
	}

	return export, nil
}

func findOwnedConversation(ctx context.Context, uow unitofwork.UnitOfWork, accountId, id uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.AccountOwnedBy{AccountID: accountId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

// loadRecentMessages fetches newest first and reverses to ascending.
func loadRecentMessages(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID, limit int) ([]*entity.Message, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func toConversationResponse(c *entity.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		Id:        c.Id,
		Title:     c.Title,
		ChatType:  c.ChatType,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMessageResponse(m *entity.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Sender:         m.Sender,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
