// Package notify provides the Telegram-backed implementation of the
// notification gateway: pending reminders are held on in-process timers and
// delivered as bot messages when they fire.
package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"household_reminder_bot/internal/domain/notify"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ErrGatewayUnavailable is returned by Schedule when no delivery channel is
// configured. Callers gate on Available() first, so hitting this means a
// wiring bug rather than a runtime condition.
var ErrGatewayUnavailable = fmt.Errorf("notification gateway unavailable")

type pendingNotification struct {
	scheduled notify.Scheduled
	title     string
	body      string
	timer     *time.Timer
}

// TelegramGateway implements notify.Gateway on top of a telebot instance.
// It owns the firing side entirely: once Schedule returns, delivery happens on
// the stored timer with no further involvement from the caller.
type TelegramGateway struct {
	bot    *telebot.Bot // nil when delivery is not configured
	chatID int64
	logger *logrus.Entry

	mu      sync.Mutex
	pending map[string]*pendingNotification
}

func NewTelegramGateway(bot *telebot.Bot, chatID int64, logger *logrus.Entry) *TelegramGateway {
	return &TelegramGateway{
		bot:     bot,
		chatID:  chatID,
		logger:  logger,
		pending: make(map[string]*pendingNotification),
	}
}

// Available reports whether reminders can actually be delivered. This is a
// stable property of the process: a missing bot token or chat ID disables the
// whole feature rather than erroring on every call.
func (g *TelegramGateway) Available() bool {
	return g.bot != nil && g.chatID != 0
}

func (g *TelegramGateway) Schedule(_ context.Context, n notify.Notification) (string, error) {
	if !g.Available() {
		return "", ErrGatewayUnavailable
	}

	id := uuid.NewString()
	delay := time.Until(n.TriggerAt)
	if delay < 0 {
		delay = 0
	}

	g.mu.Lock()
	g.pending[id] = &pendingNotification{
		scheduled: notify.Scheduled{ID: id, Tag: n.Tag, TriggerAt: n.TriggerAt},
		title:     n.Title,
		body:      n.Body,
		timer:     time.AfterFunc(delay, func() { g.fire(id) }),
	}
	g.mu.Unlock()
	return id, nil
}

// Cancel stops and forgets the notification. Unknown identifiers are a no-op:
// the platform may already have fired them.
func (g *TelegramGateway) Cancel(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.pending[id]; ok {
		p.timer.Stop()
		delete(g.pending, id)
	}
	return nil
}

func (g *TelegramGateway) ListScheduled(_ context.Context) ([]notify.Scheduled, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]notify.Scheduled, 0, len(g.pending))
	for _, p := range g.pending {
		out = append(out, p.scheduled)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggerAt.Before(out[j].TriggerAt) })
	return out, nil
}

// Stop cancels every pending timer. Called on shutdown; scheduled reminders
// are rebuilt from the store on the next start.
func (g *TelegramGateway) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, p := range g.pending {
		p.timer.Stop()
		delete(g.pending, id)
	}
}

func (g *TelegramGateway) fire(id string) {
	g.mu.Lock()
	p, ok := g.pending[id]
	delete(g.pending, id)
	g.mu.Unlock()
	if !ok {
		return
	}

	text := fmt.Sprintf("🔔 %s\n%s", p.title, p.body)
	if _, err := g.bot.Send(&telebot.Chat{ID: g.chatID}, text); err != nil {
		g.logger.WithError(err).WithField("tag", p.scheduled.Tag).Error("Failed to deliver reminder")
		return
	}
	g.logger.WithField("tag", p.scheduled.Tag).Info("Reminder delivered")
}
