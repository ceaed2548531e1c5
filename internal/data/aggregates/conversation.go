package aggregates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
)

type ConversationAggregateDeps struct {
	Base BaseDeps

	Conversations repos.ConversationRepo
	Messages      repos.MessageRepo
}

type conversationAggregate struct {
	deps ConversationAggregateDeps
}

func NewConversationAggregate(deps ConversationAggregateDeps) domainagg.ConversationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &conversationAggregate{deps: deps}
}

func (a *conversationAggregate) Contract() domainagg.Contract {
	return domainagg.ConversationAggregateContract
}

func (a *conversationAggregate) AppendMessages(ctx context.Context, in domainagg.AppendMessagesInput) (domainagg.AppendMessagesResult, error) {
	const op = "Chat.Conversation.AppendMessages"
	var out domainagg.AppendMessagesResult
	if in.UserID == uuid.Nil || in.ConversationID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or conversation_id", nil)
	}
	if len(in.Messages) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "no messages to append", nil)
	}
	for _, m := range in.Messages {
		if m.Role != chat.RoleUser && m.Role != chat.RoleAssistant {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "invalid message role "+m.Role, nil)
		}
		if strings.TrimSpace(m.Content) == "" {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "message content is empty", nil)
		}
	}
	if a.deps.Conversations == nil || a.deps.Messages == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "conversation aggregate repos not configured", nil)
	}

	at := in.EventAt.UTC()
	if in.EventAt.IsZero() {
		at = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		conv, err := a.deps.Conversations.LockByID(dbc, in.ConversationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainagg.NotFound(op, "conversation", in.ConversationID)
			}
			return err
		}
		if conv == nil || conv.UserID != in.UserID {
			return domainagg.NotFound(op, "conversation", in.ConversationID)
		}
		if err := RequireStatusAllowed(conv.Status, chat.ConversationActive); err != nil {
			return domainagg.PreconditionFailed(op, "conversation is "+conv.Status)
		}

		seq := conv.NextSeq
		rows := make([]*types.Message, 0, len(in.Messages))
		for _, m := range in.Messages {
			seq++
			rows = append(rows, &types.Message{
				ID:             uuid.New(),
				ConversationID: conv.ID,
				UserID:         in.UserID,
				Seq:            seq,
				Role:           m.Role,
				Content:        strings.TrimSpace(m.Content),
				Model:          m.Model,
				CreatedAt:      at,
				UpdatedAt:      at,
			})
		}
		if _, err := a.deps.Messages.Create(dbc, rows); err != nil {
			return err
		}
		if err := a.deps.Conversations.UpdateFields(dbc, conv.ID, map[string]interface{}{
			"next_seq":        seq,
			"last_message_at": at,
		}); err != nil {
			return err
		}
		out.ConversationID = conv.ID
		out.Messages = rows
		out.NextSeq = seq
		return nil
	})
	if err != nil {
		return domainagg.AppendMessagesResult{}, err
	}
	return out, nil
}
