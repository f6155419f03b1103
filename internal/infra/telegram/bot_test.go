package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type senderStub struct {
	sent []tgbotapi.Chattable
}

func (s *senderStub) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, nil
}

func TestNotifyUrgentReport(t *testing.T) {
	stub := &senderStub{}
	n := NewNotifier(stub, -1001, "https://admin.example.com/")

	report := model.UserReport{
		ID:           "r1",
		TargetUserID: "u<1>",
		Reason:       enums.ReportReasonHarassment,
		Description:  "threatening messages",
		Timestamp:    time.Unix(0, 0),
	}
	if err := n.NotifyUrgentReport(context.Background(), report); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(stub.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(stub.sent))
	}
	msg, ok := stub.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", stub.sent[0])
	}
	if msg.ChatID != -1001 || msg.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("unexpected message config: %+v", msg)
	}
	if !strings.Contains(msg.Text, "u&lt;1&gt;") || !strings.Contains(msg.Text, "threatening messages") {
		t.Fatalf("unexpected text: %s", msg.Text)
	}
	if msg.ReplyMarkup == nil {
		t.Fatalf("expected admin panel buttons")
	}
}

func TestNotifyRequiresChat(t *testing.T) {
	n := NewNotifier(&senderStub{}, 0, "")
	if err := n.NotifyUrgentReport(context.Background(), model.UserReport{ID: "r1"}); err == nil {
		t.Fatalf("expected error without chat id")
	}
}
