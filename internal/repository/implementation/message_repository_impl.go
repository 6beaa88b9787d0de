package implementation

import (
	"context"

	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/mapper"
	"tria-chat-be/internal/model"
	"tria-chat-be/internal/repository/contract"
	"tria-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Omit("Conversation").Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) DeleteByConversationID(ctx context.Context, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).Delete(&model.Message{}).Error
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Message, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageRepositoryImpl) FindHistory(ctx context.Context, accountId uuid.UUID, chatType string, limit int) ([]*entity.MessageHistoryItem, error) {
	var rows []*model.MessageHistoryRow

	query := r.db.WithContext(ctx).
		Table("messages").
		Select(`messages.id, messages.conversation_id, messages.account_id, messages.sender,
			messages.content, messages.created_at,
			conversations.title AS conversation_title, conversations.chat_type AS chat_type`).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.account_id = ?", accountId)

	if chatType != "" {
		query = query.Where("conversations.chat_type = ?", chatType)
	}

	if err := query.Order("messages.created_at DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]*entity.MessageHistoryItem, len(rows))
	for i, row := range rows {
		items[i] = r.mapper.HistoryRowToEntity(row)
	}
	return items, nil
}
