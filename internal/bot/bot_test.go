package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/classifier"
	"github.com/xaenox/hr-hub/internal/conversation"
	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/storage"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	actions  []tgbotapi.ChatActionConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if action, ok := c.(tgbotapi.ChatActionConfig); ok {
		f.actions = append(f.actions, action)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) sent() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.messages...)
}

func newTestBot(t *testing.T, delay time.Duration) (*Bot, *fakeSender) {
	t.Helper()
	store := storage.NewMemoryStorage(storage.SampleData())
	chats := conversation.NewManager(classifier.NewRuleClassifier(), store, delay, 50, 0, 0, zap.NewNop())
	sender := &fakeSender{}
	return newBot(sender, store, chats, storage.SampleEmployeeID, "en-US", zap.NewNop()), sender
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 11,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: 7, LanguageCode: "en"},
		Text:      text,
	}
}

func commandMessage(chatID int64, command string) *tgbotapi.Message {
	msg := textMessage(chatID, command)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return msg
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"SAR 19,500.00", `SAR 19,500\.00`},
		{"#policy", `\#policy`},
		{"(Grade D)!", `\(Grade D\)\!`},
		{`a\b`, `a\\b`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, escapeMarkdown(tc.in), tc.in)
	}
}

func TestHandleMessage_Replies(t *testing.T) {
	b, sender := newTestBot(t, 0)

	b.handleMessage(context.Background(), textMessage(42, "Can I work from home?"))

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(42), sent[0].ChatID)
	assert.Equal(t, 11, sent[0].ReplyToMessageID)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, sent[0].ParseMode)
	assert.Contains(t, sent[0].Text, `\#policy`)
	assert.Len(t, sender.actions, 1)

	session, err := b.chats.Session(context.Background(), "tg-42")
	require.NoError(t, err)
	assert.Len(t, session.Turns(), 2)
}

func TestHandleMessage_Empty(t *testing.T) {
	b, sender := newTestBot(t, 0)

	b.handleMessage(context.Background(), textMessage(42, "  "))

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Please type your question.", sent[0].Text)
}

func TestHandleMessage_Busy(t *testing.T) {
	b, sender := newTestBot(t, 100*time.Millisecond)

	done := make(chan struct{})
	go func() {
		b.handleMessage(context.Background(), textMessage(42, "wfh"))
		close(done)
	}()

	require.Eventually(t, func() bool {
		s, err := b.chats.Session(context.Background(), "tg-42")
		return err == nil && s.Busy()
	}, time.Second, 5*time.Millisecond)

	b.handleMessage(context.Background(), textMessage(42, "expense policy"))
	<-done

	sent := sender.sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Text, "still working")
	assert.Contains(t, sent[1].Text, "work from home")
}

func TestCommands(t *testing.T) {
	b, sender := newTestBot(t, 0)
	ctx := context.Background()

	b.handleMessage(ctx, commandMessage(1, "/start"))
	b.handleMessage(ctx, commandMessage(1, "/help"))
	b.handleMessage(ctx, commandMessage(1, "/history"))
	b.handleMessage(ctx, commandMessage(1, "/policies"))
	b.handleMessage(ctx, commandMessage(1, "/tags"))

	sent := sender.sent()
	require.Len(t, sent, 5)
	assert.Contains(t, sent[0].Text, "Welcome to HR Hub")
	assert.Contains(t, sent[1].Text, "/policies")
	assert.Contains(t, sent[2].Text, "haven't talked yet")
	assert.Contains(t, sent[3].Text, "*Company policies:*")
	assert.Contains(t, sent[4].Text, "Unknown command")
}

func TestFormatHistory(t *testing.T) {
	turns := []models.Turn{
		{Role: models.RoleUser, Text: "wfh?"},
		{Role: models.RoleAssistant, Text: "wfh?", Response: "Yes, 2 days.", Category: models.CategoryPolicy},
	}
	out := formatHistory(turns)
	assert.Contains(t, out, `*You:* wfh?`)
	assert.Contains(t, out, `*HR Assistant:* _Yes, 2 days\._`)
}
