package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
)

var ConversationAggregateContract = Contract{
	Name:             "Chat.ConversationAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns message sequencing and conversation activity metadata.",
}

// ConversationAggregate owns message appends.
//
// Write failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodePreconditionFailed, CodeConflict, CodeRetryable, CodeInternal.
type ConversationAggregate interface {
	Aggregate

	// AppendMessages locks the conversation, assigns consecutive seq values and
	// inserts the messages in one transaction.
	AppendMessages(ctx context.Context, in AppendMessagesInput) (AppendMessagesResult, error)
}

type AppendMessagesInput struct {
	UserID         uuid.UUID
	ConversationID uuid.UUID
	Messages       []MessageInput
	EventAt        time.Time
}

type MessageInput struct {
	Role    string
	Content string
	Model   string
}

type AppendMessagesResult struct {
	ConversationID uuid.UUID
	Messages       []*chat.Message
	NextSeq        int64
}
