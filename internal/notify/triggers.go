package notify

import (
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

// ReminderLead is how long before the deadline the reminder fires.
const ReminderLead = time.Hour

// ComputeTriggers returns the future alert instants for task, reminder first.
// An overdue task gets none.
func ComputeTriggers(task model.Task, now time.Time) []model.Trigger {
	out := make([]model.Trigger, 0, 2)
	if reminderAt := task.Deadline.Add(-ReminderLead); reminderAt.After(now) {
		out = append(out, model.Trigger{
			Kind:    model.TriggerKindReminder,
			FireAt:  reminderAt,
			Payload: reminderPayload(task),
		})
	}
	if task.Deadline.After(now) {
		out = append(out, model.Trigger{
			Kind:    model.TriggerKindDeadline,
			FireAt:  task.Deadline,
			Payload: deadlinePayload(task),
		})
	}
	return out
}

func reminderPayload(task model.Task) model.Payload {
	return model.Payload{
		TaskID:  task.ID,
		Kind:    model.TriggerKindReminder,
		Title:   "⏰ Task due soon!",
		Body:    `"` + task.Name + `" is due in 1 hour`,
		Sound:   true,
		Channel: model.DefaultChannelID,
	}
}

func deadlinePayload(task model.Task) model.Payload {
	return model.Payload{
		TaskID:  task.ID,
		Kind:    model.TriggerKindDeadline,
		Title:   "🚨 DEADLINE REACHED!",
		Body:    `Task "` + task.Name + `" has reached its deadline!`,
		Sound:   true,
		Urgent:  true,
		Channel: model.DefaultChannelID,
	}
}

func testPayload() model.Payload {
	return model.Payload{
		Kind:    model.TriggerKindTest,
		Title:   "🧪 Test notification",
		Body:    "This is a test alert from the reminder system",
		Sound:   true,
		Channel: model.DefaultChannelID,
	}
}
