package models

import "time"

// Role of a chat log line.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message types stored in the chat log.
const (
	MessageTypeText  = "text"
	MessageTypeVoice = "voice"
)

// ChatMessage is one line of the conversation log.
type ChatMessage struct {
	ID           int64
	UserID       int64
	Username     string
	Role         Role
	Content      string
	Type         string
	InputTokens  int64
	OutputTokens int64
	CreatedAt    time.Time
}

// Usage holds token totals across the whole log.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// UserStat aggregates user-authored messages per username.
type UserStat struct {
	Username      string
	TotalMessages int64
	LastActive    time.Time
}

// HourlyActivity is the message count for one hour of day ("00".."23").
type HourlyActivity struct {
	Hour  string
	Count int64
}
