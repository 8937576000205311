package models

import "time"

const (
	ChannelEmail = "email"

	StatusSent   = "sent"
	StatusFailed = "failed"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NotificationLog records the outcome of delivering one event to a
// recipient, retries included.
type NotificationLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Recipient string    `json:"recipient" gorm:"type:varchar(254);index"`
	EventType string    `json:"event_type" gorm:"type:varchar(60);index"`
	EventKey  string    `json:"event_key" gorm:"type:varchar(64)"`
	Source    string    `json:"source" gorm:"type:varchar(60)"`
	Channel   string    `json:"channel" gorm:"type:varchar(20)"`
	Subject   string    `json:"subject" gorm:"type:varchar(200)"`
	Status    string    `json:"status" gorm:"type:varchar(20);index"`
	Error     string    `json:"error,omitempty" gorm:"type:text"`
	Attempts  int       `json:"attempts"`
	MessageID string    `json:"message_id,omitempty" gorm:"type:varchar(120)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type NotificationFilter struct {
	Recipient string
	Status    string
	EventType string
	Page      int
	PageSize  int
}

// Normalize clamps paging to page >= 1 and 1..MaxPageSize rows.
func (f NotificationFilter) Normalize() NotificationFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize < 1:
		f.PageSize = DefaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
	return f
}

func (f NotificationFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// StatusCount is one row of the delivery summary.
type StatusCount struct {
	EventType string `json:"event_type"`
	Status    string `json:"status"`
	Count     int64  `json:"count"`
}
