package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

type stubGenerator struct {
	reply   string
	err     error
	history []domain.Message
	message string
}

func (g *stubGenerator) Generate(_ context.Context, _ domain.LLMConfig, history []domain.Message, message string) (string, error) {
	g.history = history
	g.message = message
	return g.reply, g.err
}

type stubAgent struct {
	result string
	err    error
	intent *domain.Intent
}

func (a *stubAgent) Process(_ context.Context, _ string, intent *domain.Intent) (string, error) {
	a.intent = intent
	return a.result, a.err
}

func testUser() *domain.CustomerProfile {
	return &domain.CustomerProfile{ID: "user-1"}
}

func newTestService(gen Generator, agent IntentAgent) (*Service, *MemoryConversationStore) {
	store := NewMemoryConversationStore()
	svc := NewService(gen, store, agent, nil, &config.LLMConfig{
		Provider:    "azure_openai",
		ModelName:   "gpt-4o",
		Temperature: 0.7,
	}, logger.NewNop())
	return svc, store
}

func TestHandleMessageNewConversation(t *testing.T) {
	gen := &stubGenerator{reply: "You could consider a SIPP."}
	svc, store := newTestService(gen, nil)

	result, err := svc.HandleMessage(context.Background(), testUser(), "", "How should I save for retirement?")
	require.NoError(t, err)

	assert.NotEmpty(t, result.ConversationID)
	assert.Equal(t, "You could consider a SIPP.", result.Response)
	assert.Len(t, result.SuggestedQuestions, 4)
	assert.Nil(t, result.Intent)
	assert.Empty(t, gen.history, "a fresh conversation has no history")
	assert.Equal(t, "How should I save for retirement?", gen.message)

	conv, err := store.Get(context.Background(), result.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", conv.UserID)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.MessageTypeUser, conv.Messages[0].Type)
	assert.Equal(t, domain.MessageTypeBot, conv.Messages[1].Type)
	assert.Equal(t, result.MessageID, conv.Messages[1].ID)
}

func TestHandleMessageContinuesConversation(t *testing.T) {
	gen := &stubGenerator{reply: "first"}
	svc, _ := newTestService(gen, nil)

	first, err := svc.HandleMessage(context.Background(), testUser(), "", "hello")
	require.NoError(t, err)

	gen.reply = "second"
	second, err := svc.HandleMessage(context.Background(), testUser(), first.ConversationID, "and then?")
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	require.Len(t, gen.history, 2, "history covers the prior turn but not the new message")
	assert.Equal(t, "hello", gen.history[0].Content)
	assert.Equal(t, "first", gen.history[1].Content)
}

func TestHandleMessageForeignConversationStartsFresh(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	svc, store := newTestService(gen, nil)

	other := domain.NewConversation("someone-else")
	require.NoError(t, store.Save(context.Background(), other))

	result, err := svc.HandleMessage(context.Background(), testUser(), other.ID, "hello")
	require.NoError(t, err)

	assert.NotEqual(t, other.ID, result.ConversationID)

	reread, err := store.Get(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Empty(t, reread.Messages, "the foreign transcript stays untouched")
}

func TestHandleMessageModelFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider down")}
	svc, store := newTestService(gen, nil)

	result, err := svc.HandleMessage(context.Background(), testUser(), "", "hello")
	require.NoError(t, err, "a model failure is not a turn failure")
	assert.Equal(t, fallbackReply, result.Response)

	conv, err := store.Get(context.Background(), result.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, fallbackReply, conv.Messages[1].Content)
}

func TestHandleMessageExtractsIntentAndCallsAgent(t *testing.T) {
	gen := &stubGenerator{
		reply: `Understood. {"intent":"pension_transfer","sub_intent":"consolidation","summary":"Consolidate pensions"}`,
	}
	agent := &stubAgent{result: "Case opened"}
	svc, _ := newTestService(gen, agent)

	result, err := svc.HandleMessage(context.Background(), testUser(), "", "please consolidate")
	require.NoError(t, err)

	require.NotNil(t, result.Intent)
	assert.Equal(t, "pension_transfer", result.Intent.Intent)
	assert.Equal(t, "Case opened", result.AgentResult)
	assert.Equal(t, result.Intent, agent.intent)
}

func TestHandleMessageAgentFailureIsNonFatal(t *testing.T) {
	gen := &stubGenerator{
		reply: `{"intent":"pension_transfer","sub_intent":"","summary":"s"}`,
	}
	agent := &stubAgent{err: errors.New("agent down")}
	svc, _ := newTestService(gen, agent)

	result, err := svc.HandleMessage(context.Background(), testUser(), "", "hi")
	require.NoError(t, err)
	require.NotNil(t, result.Intent)
	assert.Empty(t, result.AgentResult)
}

func TestHistoryEnforcesOwnership(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	svc, _ := newTestService(gen, nil)

	result, err := svc.HandleMessage(context.Background(), testUser(), "", "hello")
	require.NoError(t, err)

	conv, err := svc.History(context.Background(), "user-1", result.ConversationID)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2)

	_, err = svc.History(context.Background(), "intruder", result.ConversationID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.History(context.Background(), "user-1", "unknown-id")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestUpdateLLMConfigPartialPatch(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{reply: "ok"}, nil)

	provider := "anthropic"
	updated := svc.UpdateLLMConfig(&provider, nil, nil)
	assert.Equal(t, "anthropic", updated.Provider)
	assert.Equal(t, "gpt-4o", updated.ModelName, "unset fields keep their value")
	assert.Equal(t, 0.7, updated.Temperature)

	temp := 0.2
	model := "claude-3-5-sonnet-20240620"
	updated = svc.UpdateLLMConfig(nil, &model, &temp)
	assert.Equal(t, "anthropic", updated.Provider)
	assert.Equal(t, model, updated.ModelName)
	assert.Equal(t, 0.2, updated.Temperature)

	assert.Equal(t, updated, svc.LLMConfig())
}

func TestSuggestedQuestionsFreshIDs(t *testing.T) {
	first := SuggestedQuestions()
	second := SuggestedQuestions()

	require.Len(t, first, 4)
	require.Len(t, second, 4)
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.NotEqual(t, first[i].ID, second[i].ID)
	}
}

func TestMemoryConversationStore(t *testing.T) {
	store := NewMemoryConversationStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	conv := domain.NewConversation("user-1")
	conv.Append(domain.NewMessage(domain.MessageTypeUser, "hello"))
	require.NoError(t, store.Save(ctx, conv))

	got, err := store.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	require.Len(t, got.Messages, 1)
}
