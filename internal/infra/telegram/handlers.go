package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"household_reminder_bot/internal/app"
	"household_reminder_bot/internal/domain/notify"
	"household_reminder_bot/internal/domain/status"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands wires the thin operational command surface: inspecting
// the household state and the upcoming reminder schedule, and closing out
// tasks and bills from chat. Full CRUD stays with the client app; these
// commands only drive the coordinators the same way the store layer does.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	gateway notify.Gateway,
	tasks *app.TaskCoordinator,
	bills *app.BillCoordinator,
	maintenance *app.MaintenanceCoordinator,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		return c.Send("Hi! I deliver household reminders for tasks, bills and maintenance. Use /overview for the current state, /upcoming to see what is scheduled, /done <task id> to complete a task, /paid <bill id> <amount> to record a payment, /history <item id> for maintenance history.")
	})

	b.Handle("/overview", func(c telebot.Context) error {
		log := baseLogger.WithFields(logrus.Fields{"handler": "/overview", "sender_id": c.Sender().ID})
		today := time.Now()

		var sb strings.Builder

		taskList, err := tasks.List(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list tasks")
			return c.Send("Could not read the household state, please try again later.")
		}
		sb.WriteString("Tasks:\n")
		for _, t := range taskList {
			if !t.Active() {
				continue
			}
			line := fmt.Sprintf("• [%d] %s — due %s", t.ID, t.Title, t.DueDate.Format("Mon, 2 Jan"))
			if status.TaskOverdue(t, today) {
				line += " (overdue)"
			}
			sb.WriteString(line + "\n")
		}

		billList, err := bills.List(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list bills")
			return c.Send("Could not read the household state, please try again later.")
		}
		sb.WriteString("Bills:\n")
		for _, bl := range billList {
			sb.WriteString(fmt.Sprintf("• [%d] %s — day %d, %s\n", bl.ID, bl.Name, bl.DueDay, status.ForBill(bl, today)))
		}

		items, err := maintenance.List(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list maintenance items")
			return c.Send("Could not read the household state, please try again later.")
		}
		sb.WriteString("Maintenance:\n")
		for _, item := range items {
			line := fmt.Sprintf("• [%d] %s — %s", item.ID, item.Name, status.ForMaintenance(item, today))
			if item.NextDate.Valid {
				line += fmt.Sprintf(", next %s", item.NextDate.Time.Format("Mon, 2 Jan"))
			}
			sb.WriteString(line + "\n")
		}

		return c.Send(sb.String())
	})

	b.Handle("/history", func(c telebot.Context) error {
		log := baseLogger.WithFields(logrus.Fields{"handler": "/history", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /history <maintenance item id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Item id must be a number.")
		}

		events, err := maintenance.History(ctx, id)
		if err != nil {
			log.WithError(err).WithField("item_id", id).Error("Failed to list maintenance history")
			return c.Send(fmt.Sprintf("Could not read history for item %d.", id))
		}
		if len(events) == 0 {
			return c.Send("No maintenance recorded for this item yet.")
		}

		var sb strings.Builder
		sb.WriteString("Maintenance history:\n")
		for _, e := range events {
			line := fmt.Sprintf("• %s", e.PerformedAt.Format("2 Jan 2006"))
			if e.Notes.Valid {
				line += fmt.Sprintf(" — %s", e.Notes.String)
			}
			sb.WriteString(line + "\n")
		}
		return c.Send(sb.String())
	})

	b.Handle("/upcoming", func(c telebot.Context) error {
		log := baseLogger.WithFields(logrus.Fields{"handler": "/upcoming", "sender_id": c.Sender().ID})

		scheduled, err := gateway.ListScheduled(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list scheduled reminders")
			return c.Send("Could not read the reminder schedule, please try again later.")
		}
		if len(scheduled) == 0 {
			return c.Send("No reminders scheduled.")
		}

		var sb strings.Builder
		sb.WriteString("Upcoming reminders:\n")
		for _, s := range scheduled {
			sb.WriteString(fmt.Sprintf("• %s — %s\n", s.Tag, s.TriggerAt.Format("Mon, 2 Jan 15:04")))
		}
		log.WithField("count", len(scheduled)).Info("Listed upcoming reminders")
		return c.Send(sb.String())
	})

	b.Handle("/done", func(c telebot.Context) error {
		log := baseLogger.WithFields(logrus.Fields{"handler": "/done", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /done <task id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Task id must be a number.")
		}

		t, err := tasks.Complete(ctx, id)
		if err != nil {
			log.WithError(err).WithField("task_id", id).Error("Failed to complete task")
			return c.Send(fmt.Sprintf("Could not complete task %d.", id))
		}
		if t.IsRecurring {
			return c.Send(fmt.Sprintf("Done! %q rolls forward to %s.", t.Title, t.DueDate.Format("Mon, 2 Jan")))
		}
		return c.Send(fmt.Sprintf("Done! %q is completed.", t.Title))
	})

	b.Handle("/paid", func(c telebot.Context) error {
		log := baseLogger.WithFields(logrus.Fields{"handler": "/paid", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 2 {
			return c.Send("Usage: /paid <bill id> <amount>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Bill id must be a number.")
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil || amount < 0 {
			return c.Send("Amount must be a non-negative number.")
		}

		paid, err := bills.MarkPaid(ctx, id, amount)
		if err != nil {
			log.WithError(err).WithField("bill_id", id).Error("Failed to mark bill paid")
			return c.Send(fmt.Sprintf("Could not mark bill %d as paid.", id))
		}
		return c.Send(fmt.Sprintf("Recorded: %s paid %.2f this cycle.", paid.Name, amount))
	})
}
