package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"football-pulse/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Announcer tells an audience about a freshly published article.
type Announcer interface {
	Announce(ctx context.Context, a model.Article) error
}

// Sender is the part of *tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts article announcements to one chat.
type Telegram struct {
	bot     Sender
	chatID  int64
	siteURL string
}

// NewTelegram connects a bot with the given token.
func NewTelegram(token string, chatID int64, siteURL string) (*Telegram, error) {
	if strings.TrimSpace(token) == "" || chatID == 0 {
		return nil, errors.New("telegram: token and chat_id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	bot.Debug = false
	slog.Info("telegram: notifier initialized", "bot", bot.Self.UserName, "chat_id", chatID)
	return NewTelegramWithSender(bot, chatID, siteURL), nil
}

func NewTelegramWithSender(s Sender, chatID int64, siteURL string) *Telegram {
	return &Telegram{bot: s, chatID: chatID, siteURL: strings.TrimRight(siteURL, "/")}
}

func (t *Telegram) Announce(ctx context.Context, a model.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, t.format(a))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = false
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send %s: %w", a.ID, err)
	}
	slog.Info("telegram: announced", "id", a.ID, "title", a.Title)
	return nil
}

func (t *Telegram) format(a model.Article) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "<b>%s</b>\n", html.EscapeString(a.Title))
	if s := strings.TrimSpace(a.Summary); s != "" {
		fmt.Fprintf(b, "\n%s\n", html.EscapeString(s))
	}
	link := a.URL
	if t.siteURL != "" {
		link = t.siteURL + "/article/" + a.ID
	}
	if link != "" {
		fmt.Fprintf(b, "\n%s", html.EscapeString(link))
	}
	return b.String()
}
