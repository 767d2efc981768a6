package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestNotifySendsToEveryRecipient(t *testing.T) {
	bot := &fakeSender{}
	tg := New(bot, nil)
	tg.Notify(context.Background(), service.Event{
		Kind: service.EventDecision, To: []int64{1, 2}, Position: "Go <dev>", Status: domain.StatusHired,
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tg.Close(ctx))

	require.Len(t, bot.sent, 2)
	assert.Equal(t, int64(1), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, bot.sent[0].ParseMode)
	assert.Contains(t, bot.sent[0].Text, "Go &lt;dev&gt;")
	assert.Contains(t, bot.sent[0].Text, "hired")
}

func TestNotifySwallowsFailures(t *testing.T) {
	tg := New(&fakeSender{err: errors.New("telegram down")}, nil)
	tg.Notify(context.Background(), service.Event{Kind: service.EventInboxClaimed, To: []int64{1}, Position: "QA"})
	require.NoError(t, tg.Close(context.Background()))
}

func TestFormat(t *testing.T) {
	at := time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)
	link := "https://meet.example/abc"
	text := Format(service.Event{
		Kind: service.EventInterviewConfirmed, Position: "Go developer", At: &at,
		Interview: &domain.Interview{MeetLink: &link},
	})
	assert.Contains(t, text, "03.03.2026 11:00")
	assert.Contains(t, text, link)

	text = Format(service.Event{
		Kind: service.EventSlotsProposed, Position: "Go developer",
		Interview: &domain.Interview{Slots: []domain.Slot{{StartTime: at, EndTime: at.Add(30 * time.Minute)}}},
	})
	assert.Contains(t, text, "03.03.2026 11:00 UTC – 11:30")

	text = Format(service.Event{Kind: service.EventDecision, Position: "QA", Status: domain.StatusRejected, Reason: "no <match>"})
	assert.Contains(t, text, "no &lt;match&gt;")

	assert.Empty(t, Format(service.Event{Kind: "unknown"}))
}
