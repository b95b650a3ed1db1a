package notifier

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
)

const telegramMessageLimit = 4096

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramConfig struct {
	Token  string
	ChatID int64
	// APIEndpoint overrides tgbotapi.APIEndpoint, mostly for tests.
	APIEndpoint string
	Logger      *logging.Logger
}

// Telegram sends reports to one chat as plain text.
type Telegram struct {
	bot    telegramSender
	chatID int64
	logger *logging.Logger
}

// NewTelegram connects to the Bot API; it fails when the token is rejected.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, crerr.New("telegram bot token is required")
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, crerr.Wrap(err, "create telegram bot")
	}
	bot.Debug = false

	return newTelegram(bot, cfg.ChatID, cfg.Logger), nil
}

func newTelegram(bot telegramSender, chatID int64, logger *logging.Logger) *Telegram {
	if logger == nil {
		logger = logging.Default()
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: logger.With("notifier", "telegram", "chat_id", chatID),
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	chunks := SplitMessage(text, telegramMessageLimit)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, chunk)
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			return crerr.Wrapf(err, "send telegram chunk %d/%d", i+1, len(chunks))
		}
	}
	t.logger.DebugContext(ctx, "report delivered", "chunks", len(chunks))
	return nil
}
