package update

import (
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/views"
)

func (m *Model) recordAlarm(a scheduler.Alarm) {
	m.Feed = append(m.Feed, FeedEntry{
		At:     m.now(),
		TaskID: a.Payload.TaskID,
		Kind:   a.Payload.Kind,
		Title:  a.Payload.Title,
		Body:   a.Payload.Body,
		handle: a.Handle,
	})
	if len(m.Feed) > feedLimit {
		m.Feed = m.Feed[len(m.Feed)-feedLimit:]
	}
	m.Status = StatusBar{Text: a.Payload.Title + " " + a.Payload.Body}
}

func (m *Model) markShown(handle string, err error) {
	for i := len(m.Feed) - 1; i >= 0; i-- {
		if m.Feed[i].handle != handle {
			continue
		}
		m.Feed[i].Shown = err == nil
		if err != nil {
			m.Feed[i].ShowErr = err.Error()
		}
		break
	}
	if err != nil {
		m.deps.Logger.Error("desktop notification", "handle", handle, "err", err)
	}
}

func (m Model) renderFeed() string {
	start := 0
	if len(m.Feed) > 3 {
		start = len(m.Feed) - 3
	}
	entries := make([]views.FeedEntryData, 0, len(m.Feed)-start)
	for _, e := range m.Feed[start:] {
		entries = append(entries, views.FeedEntryData{At: formatFeedTime(e.At), Title: e.Title, Body: e.Body})
	}
	return views.RenderFeed(entries)
}
