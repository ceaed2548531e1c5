package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/modules/planning"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
)

const (
	defaultConversationTitle = "Career Planning Conversation"
	maxMessageLength         = 4000
)

// Advisor produces the assistant's next chat turn.
type Advisor interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
	Model() string
}

type ConversationService interface {
	Create(ctx context.Context, title string) (*types.Conversation, []*types.Message, error)
	List(ctx context.Context) ([]*types.Conversation, error)
	Messages(ctx context.Context, conversationID uuid.UUID) ([]*types.Message, error)

	// PostMessage appends the user's message and, when an advisor is
	// configured, its reply. A failed reply leaves the user message in place.
	PostMessage(ctx context.Context, conversationID uuid.UUID, content string) (*PostMessageResult, error)
}

type PostMessageResult struct {
	UserMessage      *types.Message `json:"user_message"`
	AssistantMessage *types.Message `json:"assistant_message,omitempty"`
}

type ConversationServiceDeps struct {
	Log           *logger.Logger
	Conversations repos.ConversationRepo
	Messages      repos.MessageRepo
	Profiles      repos.UserProfileRepo
	Aggregate     domainagg.ConversationAggregate

	// Optional.
	Advisor  Advisor
	Realtime realtime.Publisher
}

type conversationService struct {
	deps ConversationServiceDeps
	log  *logger.Logger
}

func NewConversationService(deps ConversationServiceDeps) ConversationService {
	return &conversationService{deps: deps, log: deps.Log.With("service", "ConversationService")}
}

func (s *conversationService) Create(ctx context.Context, title string) (*types.Conversation, []*types.Message, error) {
	const op = "Conversation.Create"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultConversationTitle
	}
	now := time.Now().UTC()
	conv := &types.Conversation{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		Type:          chat.ConversationIntake,
		Status:        chat.ConversationActive,
		LastMessageAt: now,
	}
	if _, err := s.deps.Conversations.Create(dbctx.Context{Ctx: ctx}, []*types.Conversation{conv}); err != nil {
		return nil, nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	res, err := s.deps.Aggregate.AppendMessages(ctx, domainagg.AppendMessagesInput{
		UserID:         userID,
		ConversationID: conv.ID,
		Messages:       []domainagg.MessageInput{{Role: chat.RoleAssistant, Content: IntakeOpeningMessage}},
		EventAt:        now,
	})
	if err != nil {
		return nil, nil, err
	}
	conv.NextSeq = res.NextSeq
	return conv, res.Messages, nil
}

func (s *conversationService) List(ctx context.Context) ([]*types.Conversation, error) {
	const op = "Conversation.List"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Conversations.ListByUserID(dbctx.Context{Ctx: ctx}, userID, 50)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return out, nil
}

func (s *conversationService) Messages(ctx context.Context, conversationID uuid.UUID) ([]*types.Message, error) {
	const op = "Conversation.Messages"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, op, userID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.deps.Messages.ListByConversationID(dbctx.Context{Ctx: ctx}, conversationID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return msgs, nil
}

func (s *conversationService) PostMessage(ctx context.Context, conversationID uuid.UUID, content string) (*PostMessageResult, error) {
	const op = "Conversation.PostMessage"
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domainagg.Validation(op, "content is required", nil)
	}
	if len(content) > maxMessageLength {
		return nil, domainagg.Validation(op, "content is too long", nil)
	}

	res, err := s.deps.Aggregate.AppendMessages(ctx, domainagg.AppendMessagesInput{
		UserID:         userID,
		ConversationID: conversationID,
		Messages:       []domainagg.MessageInput{{Role: chat.RoleUser, Content: content}},
	})
	if err != nil {
		return nil, err
	}
	out := &PostMessageResult{UserMessage: res.Messages[0]}
	if s.deps.Advisor == nil {
		return out, nil
	}

	reply, err := s.reply(ctx, userID, conversationID)
	if err != nil {
		s.log.Warn("advisor reply failed", "conversation_id", conversationID, "error", err)
		return out, nil
	}
	out.AssistantMessage = reply
	if s.deps.Realtime != nil {
		if err := s.deps.Realtime.Publish(ctx, realtime.SSEMessage{
			Channel: realtime.UserChannel(userID),
			Event:   realtime.SSEEventAdvisorReply,
			Data:    map[string]any{"conversation_id": conversationID, "message": reply},
		}); err != nil {
			s.log.Warn("realtime publish failed", "event", realtime.SSEEventAdvisorReply, "error", err)
		}
	}
	return out, nil
}

func (s *conversationService) reply(ctx context.Context, userID, conversationID uuid.UUID) (*types.Message, error) {
	dbc := dbctx.Context{Ctx: ctx}
	msgs, err := s.deps.Messages.ListByConversationID(dbc, conversationID)
	if err != nil {
		return nil, err
	}
	var profile *types.UserProfile
	if s.deps.Profiles != nil {
		if profile, err = s.deps.Profiles.GetByUserID(dbc, userID); err != nil {
			s.log.Warn("profile lookup failed", "user_id", userID, "error", err)
			profile = nil
		}
	}
	text, err := s.deps.Advisor.GenerateText(ctx, intakeSystemPrompt(profile), advisorUserPrompt(planning.BuildTranscript(msgs)))
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Aggregate.AppendMessages(ctx, domainagg.AppendMessagesInput{
		UserID:         userID,
		ConversationID: conversationID,
		Messages:       []domainagg.MessageInput{{Role: chat.RoleAssistant, Content: text, Model: s.deps.Advisor.Model()}},
	})
	if err != nil {
		return nil, err
	}
	return res.Messages[0], nil
}

func (s *conversationService) owned(ctx context.Context, op string, userID, conversationID uuid.UUID) (*types.Conversation, error) {
	conv, err := s.deps.Conversations.GetByID(dbctx.Context{Ctx: ctx}, conversationID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if conv == nil || conv.UserID != userID {
		return nil, domainagg.NotFound(op, "conversation", conversationID)
	}
	return conv, nil
}
