package models

import (
	"time"
)

// User is an account of the task board. Email is the login name.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Summary returns the public projection of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Fullname: u.Fullname}
}

// UserSummary is the public view of a user embedded in boards and tasks.
type UserSummary struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// Board is a shared workspace with one owner and a set of members.
// The owner is always part of MemberIDs.
type Board struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	OwnerID            int64   `json:"owner_id"`
	MemberIDs          []int64 `json:"-"`
	MemberCount        int     `json:"member_count"`
	TicketCount        int     `json:"ticket_count"`
	TasksToDoCount     int     `json:"tasks_to_do_count"`
	TasksHighPrioCount int     `json:"tasks_high_prio_count"`
	DueDate            *Date   `json:"due_date"`
}

// HasMember reports whether userID is the owner or one of the members.
func (b Board) HasMember(userID int64) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, id := range b.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// BoardDetail is a board expanded with member summaries and its tasks.
type BoardDetail struct {
	ID      int64         `json:"id"`
	Title   string        `json:"title"`
	OwnerID int64         `json:"owner_id"`
	DueDate *Date         `json:"due_date"`
	Members []UserSummary `json:"members"`
	Tasks   []Task        `json:"tasks"`
}

// TaskStatus is the column a task sits in.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "to-do"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// TaskPriority ranks tasks inside a board.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single card on a board.
type Task struct {
	ID            int64        `json:"id"`
	BoardID       int64        `json:"board"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	Assignee      *UserSummary `json:"assignee"`
	Reviewer      *UserSummary `json:"reviewer"`
	DueDate       *Date        `json:"due_date"`
	CommentsCount int          `json:"comments_count"`
}

// AssigneeID returns the assignee id or 0 when the task is unassigned.
func (t Task) AssigneeID() int64 {
	if t.Assignee == nil {
		return 0
	}
	return t.Assignee.ID
}

// ReviewerID returns the reviewer id or 0 when no reviewer is set.
func (t Task) ReviewerID() int64 {
	if t.Reviewer == nil {
		return 0
	}
	return t.Reviewer.ID
}

// Comment is an append-only note on a task.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"-"`
	AuthorID  int64     `json:"-"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
