package models

import "time"

// ReminderStatus is the persisted state of a reminder task
type ReminderStatus string

const (
	ReminderArmed ReminderStatus = "armed"
	ReminderFired ReminderStatus = "fired"
)

// Recipient is someone who receives a deadline reminder
type Recipient struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// ReminderTask is stored at reminders/{matchday}
type ReminderTask struct {
	Matchday   int            `json:"matchday"`
	FireAt     time.Time      `json:"fireAt"`
	FirstMatch time.Time      `json:"firstMatch"`
	Recipients []Recipient    `json:"recipients"`
	Status     ReminderStatus `json:"status"`
	ArmedAt    time.Time      `json:"armedAt"`
	FiredAt    *time.Time     `json:"firedAt,omitempty"`
}
