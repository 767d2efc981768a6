// Package notify delivers pipeline events to users over Telegram.
package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/metrics"
	"recruit/tracker/app/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of *tgbotapi.BotAPI we use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends each event in the background. Close waits for in-flight sends.
type Telegram struct {
	bot Sender
	log *zap.Logger
	wg  sync.WaitGroup
}

// NewTelegram authenticates the bot; every API call is bounded by timeout.
func NewTelegram(token string, timeout time.Duration, log *zap.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return New(bot, log), nil
}

func New(bot Sender, log *zap.Logger) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{bot: bot, log: log}
}

var _ service.Notifier = (*Telegram)(nil)

func (t *Telegram) Notify(_ context.Context, ev service.Event) {
	text := Format(ev)
	if text == "" {
		return
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for _, chatID := range ev.To {
			msg := tgbotapi.NewMessage(chatID, text)
			msg.ParseMode = tgbotapi.ModeHTML
			if _, err := t.bot.Send(msg); err != nil {
				metrics.NotificationsFailedTotal.Inc()
				t.log.Warn("telegram send failed",
					zap.String("event", string(ev.Kind)),
					zap.Int64("application_id", ev.ApplicationID),
					zap.Int64("chat_id", chatID),
					zap.Error(err))
			}
		}
	}()
}

// Close blocks until queued sends finish or ctx ends.
func (t *Telegram) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const timeLayout = "02.01.2006 15:04 MST"

// Format renders ev as Telegram HTML. Unknown kinds render empty.
func Format(ev service.Event) string {
	var b strings.Builder
	pos := html.EscapeString(ev.Position)
	switch ev.Kind {
	case service.EventSlotsProposed:
		fmt.Fprintf(&b, "📅 <b>Interview slots for %s</b>\nPick one of:\n", pos)
		if ev.Interview != nil {
			for _, s := range ev.Interview.Slots {
				fmt.Fprintf(&b, "• %s – %s\n", s.StartTime.UTC().Format(timeLayout), s.EndTime.UTC().Format("15:04"))
			}
		}
	case service.EventSlotBooked:
		fmt.Fprintf(&b, "✅ Candidate booked a slot for application #%d (%s)", ev.ApplicationID, pos)
		if ev.At != nil {
			fmt.Fprintf(&b, "\n🕒 %s", ev.At.UTC().Format(timeLayout))
		}
	case service.EventInterviewConfirmed:
		fmt.Fprintf(&b, "📌 <b>Interview confirmed</b> for %s", pos)
		if ev.At != nil {
			fmt.Fprintf(&b, "\n🕒 %s", ev.At.UTC().Format(timeLayout))
		}
		if iv := ev.Interview; iv != nil {
			if iv.MeetLink != nil {
				fmt.Fprintf(&b, "\n🔗 <a href=\"%s\">Join meeting</a>", html.EscapeString(*iv.MeetLink))
			}
			if iv.Address != nil {
				fmt.Fprintf(&b, "\n📍 %s", html.EscapeString(*iv.Address))
			}
		}
	case service.EventDecision:
		fmt.Fprintf(&b, "📨 Your application for <b>%s</b>: %s", pos, decision(ev.Status))
		if ev.Reason != "" {
			fmt.Fprintf(&b, "\nReason: %s", html.EscapeString(ev.Reason))
		}
	case service.EventInboxClaimed:
		fmt.Fprintf(&b, "👀 Your application for <b>%s</b> is being reviewed", pos)
	case service.EventPoolClaimed:
		fmt.Fprintf(&b, "🧑‍💻 An interviewer took application #%d (%s)", ev.ApplicationID, pos)
	case service.EventInterviewerAssigned:
		fmt.Fprintf(&b, "🧑‍💻 You were assigned application #%d (%s)", ev.ApplicationID, pos)
	case service.EventFeedbackSubmitted:
		fmt.Fprintf(&b, "📝 Technical feedback submitted for application #%d (%s)", ev.ApplicationID, pos)
	}
	return b.String()
}

func decision(st domain.Status) string {
	switch st {
	case domain.StatusAccepted:
		return "accepted, next steps follow"
	case domain.StatusRejected:
		return "rejected"
	case domain.StatusHired:
		return "🎉 you are hired"
	case domain.StatusDeclined:
		return "closed as declined"
	}
	return string(st)
}
