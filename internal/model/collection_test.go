package model

import (
	"testing"
	"time"
)

func TestSortByDeadlineReturnsSortedCopy(t *testing.T) {
	base := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	in := []Task{
		{ID: "c", Deadline: base.Add(3 * time.Hour)},
		{ID: "a", Deadline: base.Add(time.Hour)},
		{ID: "b", Deadline: base.Add(2 * time.Hour)},
	}
	out := SortByDeadline(in)
	if out[0].ID != "a" || out[1].ID != "b" || out[2].ID != "c" {
		t.Fatalf("unexpected order: %s %s %s", out[0].ID, out[1].ID, out[2].ID)
	}
	if in[0].ID != "c" {
		t.Fatal("input slice must not be reordered")
	}
}

func TestSortByDeadlineTieBreaksOnCreation(t *testing.T) {
	deadline := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	in := []Task{
		{ID: "late", Deadline: deadline, CreatedAt: deadline.Add(-time.Minute)},
		{ID: "early", Deadline: deadline, CreatedAt: deadline.Add(-time.Hour)},
	}
	out := SortByDeadline(in)
	if out[0].ID != "early" {
		t.Fatalf("expected earlier-created task first, got %s", out[0].ID)
	}
}

func TestFindAndWithoutTask(t *testing.T) {
	in := []Task{{ID: "a"}, {ID: "b"}}
	if FindTask(in, "b") != 1 || FindTask(in, "zzz") != -1 {
		t.Fatal("unexpected FindTask result")
	}
	out := WithoutTask(in, "a")
	if len(out) != 1 || out[0].ID != "b" || len(in) != 2 {
		t.Fatalf("unexpected WithoutTask result: %+v", out)
	}
}
