package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/classifier"
	"github.com/xaenox/hr-hub/internal/conversation"
	"github.com/xaenox/hr-hub/internal/locale"
	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/storage"
)

const historyTurns = 10

// Sender is the part of the Telegram API the bot writes through
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api           *tgbotapi.BotAPI
	sender        Sender
	storage       storage.Storage
	chats         *conversation.Manager
	employeeID    string
	defaultLocale string
	logger        *zap.Logger
}

func New(token string, storage storage.Storage, chats *conversation.Manager, employeeID, defaultLocale string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(api, storage, chats, employeeID, defaultLocale, logger)
	b.api = api
	return b, nil
}

func newBot(sender Sender, storage storage.Storage, chats *conversation.Manager, employeeID, defaultLocale string, logger *zap.Logger) *Bot {
	return &Bot{
		sender:        sender,
		storage:       storage,
		chats:         chats,
		employeeID:    employeeID,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// Start polls for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("tg-%d", chatID)
}

func (b *Bot) formatter(message *tgbotapi.Message) *locale.Formatter {
	if message.From != nil && message.From.LanguageCode != "" {
		return locale.Parse(message.From.LanguageCode)
	}
	return locale.Parse(b.defaultLocale)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	chatID := message.Chat.ID
	session, err := b.chats.Session(ctx, sessionID(chatID))
	if err != nil {
		b.logger.Error("Failed to open chat session",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, I couldn't load our conversation. Please try again.")
		return
	}

	snap, err := storage.LoadSnapshot(ctx, b.storage, b.employeeID)
	if err != nil {
		b.logger.Error("Failed to load employee snapshot",
			zap.Error(err),
			zap.String("employee_id", b.employeeID))
		b.sendErrorMessage(chatID, "Sorry, I couldn't load your HR records. Please try again later.")
		return
	}

	_, reply, err := session.Submit(ctx, message.Text, classifier.Context{Snapshot: snap, Formatter: b.formatter(message)})
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		b.sendMessage(chatID, "Please type your question.")
		return
	case errors.Is(err, conversation.ErrBusy):
		b.sendErrorMessage(chatID, "I'm still working on your previous question. Please wait a moment.")
		return
	case err != nil:
		b.logger.Error("Failed to submit message", zap.Error(err), zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, something went wrong. Please try again.")
		return
	}

	if _, err := b.sender.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("Failed to send typing action", zap.Error(err), zap.Int64("chat_id", chatID))
	}

	turn, ok := <-reply
	if !ok {
		return
	}
	b.sendAssistantResponse(chatID, message.MessageID, turn)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "history":
		b.handleHistory(ctx, message)
	case "policies":
		b.handlePolicies(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to HR Hub! 👋
I'm your HR assistant. Ask me about your vacation balance, your last salary payment, sick leave, business travel, work from home, or expense policies.

Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/history - Show our recent conversation
/policies - List company policies

Try asking:
- How many vacation days do I have?
- What was my last salary payment?
- What is the travel policy?
- Can I work from home?`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	session, err := b.chats.Session(ctx, sessionID(message.Chat.ID))
	if err != nil {
		b.logger.Error("Failed to open chat session",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve our conversation history.")
		return
	}

	turns := session.Turns()
	if len(turns) == 0 {
		b.sendMessage(message.Chat.ID, "We haven't talked yet. Ask me anything about HR!")
		return
	}
	if len(turns) > historyTurns {
		turns = turns[len(turns)-historyTurns:]
	}

	b.sendMarkdown(message.Chat.ID, formatHistory(turns), 0)
}

func (b *Bot) handlePolicies(ctx context.Context, message *tgbotapi.Message) {
	policies, err := b.storage.ListPolicies(ctx)
	if err != nil {
		b.logger.Error("Failed to list policies", zap.Error(err))
		b.sendErrorMessage(message.Chat.ID, "Sorry, failed to retrieve policies. Please try again later.")
		return
	}

	if len(policies) == 0 {
		b.sendMessage(message.Chat.ID, "No policies have been published yet.")
		return
	}

	b.sendMarkdown(message.Chat.ID, formatPolicies(policies), 0)
}

func formatHistory(turns []models.Turn) string {
	var sb strings.Builder
	sb.WriteString("*Our recent conversation:*\n\n")
	for _, turn := range turns {
		if turn.Role == models.RoleUser {
			sb.WriteString(fmt.Sprintf("*You:* %s\n", escapeMarkdown(turn.Text)))
			continue
		}
		sb.WriteString(fmt.Sprintf("*HR Assistant:* _%s_\n\n", escapeMarkdown(turn.Response)))
	}
	return sb.String()
}

func formatPolicies(policies []models.Policy) string {
	var sb strings.Builder
	sb.WriteString("*Company policies:*\n\n")
	for _, p := range policies {
		sb.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(p.Title)))
		sb.WriteString(fmt.Sprintf("_%s_\n", escapeMarkdown(p.Category)))
		if len(p.Tags) > 0 {
			tags := make([]string, len(p.Tags))
			for i, tag := range p.Tags {
				tags[i] = escapeMarkdown("#" + strings.ReplaceAll(tag, " ", "_"))
			}
			sb.WriteString(strings.Join(tags, " ") + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatAssistantResponse(turn models.Turn) string {
	category := escapeMarkdown("#" + string(turn.Category))
	return fmt.Sprintf("%s\n\n%s", escapeMarkdown(turn.Response), category)
}

// escapeMarkdown escapes the characters MarkdownV2 reserves
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string, replyToID int) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyToMessageID = replyToID
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send markdown message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendAssistantResponse(chatID int64, replyToID int, turn models.Turn) {
	b.sendMarkdown(chatID, formatAssistantResponse(turn), replyToID)
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
