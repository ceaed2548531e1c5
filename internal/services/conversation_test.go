package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/careerbridge-backend/internal/domain"
	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
)

type conversationHarness struct {
	svc   ConversationService
	convs *fakeConversationRepo
	msgs  *fakeMessageRepo
	pub   *fakePublisher
}

func newConversationHarness(advisor Advisor) *conversationHarness {
	convs := &fakeConversationRepo{byID: map[uuid.UUID]*types.Conversation{}}
	msgs := &fakeMessageRepo{byConv: map[uuid.UUID][]*types.Message{}}
	pub := &fakePublisher{}
	svc := NewConversationService(ConversationServiceDeps{
		Log:           logger.Nop(),
		Conversations: convs,
		Messages:      msgs,
		Profiles:      &fakeProfileRepo{byUser: map[uuid.UUID]*types.UserProfile{}},
		Aggregate:     &memConversationAggregate{convs: convs, msgs: msgs},
		Advisor:       advisor,
		Realtime:      pub,
	})
	return &conversationHarness{svc: svc, convs: convs, msgs: msgs, pub: pub}
}

func TestCreateConversationSeedsOpeningMessage(t *testing.T) {
	h := newConversationHarness(nil)
	userID := uuid.New()

	conv, msgs, err := h.svc.Create(authed(userID), "  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.Title != defaultConversationTitle || conv.Type != chat.ConversationIntake || conv.Status != chat.ConversationActive {
		t.Fatalf("conversation = %+v", conv)
	}
	if len(msgs) != 1 || msgs[0].Role != chat.RoleAssistant || msgs[0].Seq != 1 {
		t.Fatalf("opening messages = %+v", msgs)
	}
	if !strings.Contains(msgs[0].Content, "What career are you interested in transitioning to?") {
		t.Fatalf("opening content = %q", msgs[0].Content)
	}
	if conv.NextSeq != 1 {
		t.Fatalf("next seq = %d", conv.NextSeq)
	}
}

func TestPostMessageAppendsAdvisorReply(t *testing.T) {
	advisor := &fakeAdvisor{reply: "Great, how many hours a week can you study?"}
	h := newConversationHarness(advisor)
	userID := uuid.New()
	ctx := authed(userID)
	conv, _, err := h.svc.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := h.svc.PostMessage(ctx, conv.ID, "  I want to become a data analyst ")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if res.UserMessage.Content != "I want to become a data analyst" || res.UserMessage.Seq != 2 {
		t.Fatalf("user message = %+v", res.UserMessage)
	}
	if res.AssistantMessage == nil || res.AssistantMessage.Seq != 3 || res.AssistantMessage.Model != "advisor-test" {
		t.Fatalf("assistant message = %+v", res.AssistantMessage)
	}
	if len(advisor.prompts) != 1 || !strings.Contains(advisor.prompts[0], "data analyst") {
		t.Fatalf("advisor prompt did not carry the transcript: %v", advisor.prompts)
	}
	if ev := h.pub.events(); len(ev) != 1 || ev[0] != realtime.SSEEventAdvisorReply {
		t.Fatalf("realtime events = %v", ev)
	}

	all, err := h.svc.Messages(ctx, conv.ID)
	if err != nil || len(all) != 3 {
		t.Fatalf("Messages: n=%d err=%v", len(all), err)
	}
}

func TestPostMessageKeepsUserMessageWhenAdvisorFails(t *testing.T) {
	h := newConversationHarness(&fakeAdvisor{err: errors.New("model overloaded")})
	ctx := authed(uuid.New())
	conv, _, err := h.svc.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	res, err := h.svc.PostMessage(ctx, conv.ID, "hello")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if res.UserMessage == nil || res.AssistantMessage != nil {
		t.Fatalf("result = %+v", res)
	}
	if n := len(h.msgs.byConv[conv.ID]); n != 2 {
		t.Fatalf("stored messages = %d, want 2", n)
	}
}

func TestPostMessageRejects(t *testing.T) {
	h := newConversationHarness(nil)
	owner := uuid.New()
	conv, _, err := h.svc.Create(authed(owner), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cases := []struct {
		name    string
		ctx     context.Context
		content string
		code    domainagg.ErrorCode
	}{
		{"blank", authed(owner), "   ", domainagg.CodeValidation},
		{"too long", authed(owner), strings.Repeat("a", maxMessageLength+1), domainagg.CodeValidation},
		{"foreign", authed(uuid.New()), "hi", domainagg.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.svc.PostMessage(tc.ctx, conv.ID, tc.content); !domainagg.IsCode(err, tc.code) {
				t.Fatalf("err = %v, want %s", err, tc.code)
			}
		})
	}
	if _, err := h.svc.Messages(authed(uuid.New()), conv.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign Messages err = %v", err)
	}
}
