package mapper

import (
	"tria-chat-be/internal/entity"
	"tria-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Conversation Mappers

func (m *ChatMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	return &entity.Conversation{
		Id:        c.Id,
		AccountId: c.AccountId,
		Title:     c.Title,
		ChatType:  c.ChatType,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	return &model.Conversation{
		Id:        c.Id,
		AccountId: c.AccountId,
		Title:     c.Title,
		ChatType:  c.ChatType,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		AccountId:      msg.AccountId,
		Sender:         msg.Sender,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		AccountId:      msg.AccountId,
		Sender:         msg.Sender,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ChatMapper) HistoryRowToEntity(row *model.MessageHistoryRow) *entity.MessageHistoryItem {
	if row == nil {
		return nil
	}
	return &entity.MessageHistoryItem{
		Message: entity.Message{
			Id:             row.Id,
			ConversationId: row.ConversationId,
			AccountId:      row.AccountId,
			Sender:         row.Sender,
			Content:        row.Content,
			CreatedAt:      row.CreatedAt,
		},
		ConversationTitle: row.ConversationTitle,
		ChatType:          row.ChatType,
	}
}
