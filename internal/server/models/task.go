package models

// Task mirrors the tasks table. Nothing reads or writes it yet.
type Task struct {
	ID          string `db:"id"`
	Text        string `db:"text"`
	IsCompleted bool   `db:"is_completed"`
}
