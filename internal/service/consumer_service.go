package service

import (
	"context"
	"encoding/json"

	"tria-chat-be/internal/dto"
	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/internal/repository/specification"
	"tria-chat-be/internal/repository/unitofwork"
	"tria-chat-be/pkg/persona"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Done is closed once the subscription has ended and the last received
	// entry has been handled.
	Done() <-chan struct{}
}

// consumerService persists transcript entries published by the chat
// service. Failures are logged and the message is acked anyway; nothing is
// retried.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	done       chan struct{}
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
		done:       make(chan struct{}),
	}
}

// Consume subscribes until ctx is cancelled. ctx must outlive every
// publisher: cancel it only after the HTTP server has drained.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		defer close(cs.done)
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) Done() <-chan struct{} {
	return cs.done
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishTranscriptEntryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal transcript entry", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	if err := cs.persist(ctx, payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to persist transcript entry", map[string]interface{}{
			"conversation_id": payload.ConversationId.String(),
			"sender":          payload.Sender,
			"error":           err.Error(),
		})
		return
	}

	cs.logger.Debug("CONSUMER", "Transcript entry persisted", map[string]interface{}{
		"conversation_id": payload.ConversationId.String(),
		"sender":          payload.Sender,
	})
}

// persist inserts the message and bumps the conversation timestamp in one
// transaction. Entries for a conversation that no longer exists, or with a
// sender that does not belong to its chat type, are dropped.
func (cs *consumerService) persist(ctx context.Context, payload dto.PublishTranscriptEntryMessage) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: payload.ConversationId})
	if err != nil {
		return err
	}
	if conversation == nil {
		cs.logger.Warn("CONSUMER", "Conversation gone, dropping entry", map[string]interface{}{
			"conversation_id": payload.ConversationId.String(),
		})
		return nil
	}
	if !persona.ValidSender(conversation.ChatType, payload.Sender) {
		return ErrInvalidSender
	}

	msg := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Sender:         payload.Sender,
		Content:        payload.Content,
		CreatedAt:      payload.CreatedAt,
	}
	if payload.Sender == persona.SenderUser {
		msg.AccountId = payload.AccountId
	}

	if err := uow.MessageRepository().Create(ctx, &msg); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Touch(ctx, conversation.Id, payload.CreatedAt); err != nil {
		return err
	}

	return uow.Commit()
}
