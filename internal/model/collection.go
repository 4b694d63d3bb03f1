package model

import "sort"

// SortByDeadline returns a copy ordered by ascending deadline. Ties keep
// creation order.
func SortByDeadline(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Deadline.Before(out[j].Deadline)
	})
	return out
}

// FindTask returns the index of the task with id, or -1.
func FindTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// WithoutTask returns a new slice lacking the task with id.
func WithoutTask(tasks []Task, id string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
