package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts alerts to the moderators chat.
type Notifier struct {
	api          sender
	chatID       int64
	adminBaseURL string
}

func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}
	return api, nil
}

func NewNotifier(api sender, chatID int64, adminBaseURL string) *Notifier {
	return &Notifier{api: api, chatID: chatID, adminBaseURL: strings.TrimRight(adminBaseURL, "/")}
}

func (n *Notifier) NotifyUrgentReport(ctx context.Context, report model.UserReport) error {
	if n == nil || n.api == nil {
		return fmt.Errorf("telegram notifier is not initialized")
	}
	if n.chatID == 0 {
		return fmt.Errorf("chat id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatUrgentReport(report))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if n.adminBaseURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("Open queue", n.adminBaseURL+"/reports/pending?priority=urgent"),
				tgbotapi.NewInlineKeyboardButtonURL("User history", n.adminBaseURL+"/users/"+report.TargetUserID+"/history"),
			),
		)
	}

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send urgent report alert: %w", err)
	}
	return nil
}

func formatUrgentReport(report model.UserReport) string {
	var b strings.Builder
	b.WriteString("<b>Urgent report</b>\n")
	fmt.Fprintf(&b, "Report: <code>%s</code>\n", html.EscapeString(report.ID))
	fmt.Fprintf(&b, "Target: <code>%s</code>\n", html.EscapeString(report.TargetUserID))
	fmt.Fprintf(&b, "Reason: %s\n", html.EscapeString(string(report.Reason)))
	if report.TargetMessageID != nil {
		fmt.Fprintf(&b, "Message: <code>%s</code>\n", html.EscapeString(*report.TargetMessageID))
	}
	if desc := strings.TrimSpace(report.Description); desc != "" {
		if len([]rune(desc)) > 300 {
			desc = string([]rune(desc)[:300]) + "..."
		}
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(desc))
	}
	fmt.Fprintf(&b, "\n%s", report.Timestamp.UTC().Format(time.RFC3339))
	return b.String()
}
