// Package domain defines the persistence models for captured leads and
// newsletter subscribers. These types are mapped with GORM and form the core
// data layer of the lead-generation backend.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Lead statuses. A lead always starts as "new"; the remaining values are
// advanced manually from the portal.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusClosed    = "closed"
)

// Lead priorities, computed from extracted fields (see services.LeadPriority).
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ChatMessage is a single utterance within a chat conversation. Order within
// a Conversation is meaningful; duplicates are permitted.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is a full chat transcript persisted alongside a lead as an
// opaque JSON blob. The stored transcript is overwritten with the latest
// accumulated conversation on each update, not appended.
type Conversation []ChatMessage

// Value implements driver.Valuer, serializing the transcript to JSON.
func (c Conversation) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing a JSON transcript.
func (c *Conversation) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return errors.New("conversation: unsupported source type")
	}
}

// Lead is a prospective client's contact/project information mined from a
// chat conversation.
//
// Identity for upserts is email (preferred) or session id (fallback); the
// most recent matching row by creation time is the one considered existing.
// Nullable extraction fields use pointers so that "not mentioned" (nil) is
// distinguishable from an explicit empty string, and so that updates can
// overwrite only non-null extracted values.
type Lead struct {
	ID string `json:"id" gorm:"type:char(36);primaryKey"`

	// Extracted contact/project fields; nil means "not mentioned yet".
	Name         *string `json:"name"          gorm:"type:varchar(255)"`
	Email        *string `json:"email"         gorm:"type:varchar(255);index"`
	Phone        *string `json:"phone"         gorm:"type:varchar(64)"`
	BusinessName *string `json:"business_name" gorm:"type:varchar(255)"`
	Website      *string `json:"website"       gorm:"type:varchar(255)"`
	ProjectType  *string `json:"project_type"  gorm:"type:varchar(255)"`
	BudgetRange  *string `json:"budget_range"  gorm:"type:varchar(128)"`
	Timeline     *string `json:"timeline"      gorm:"type:varchar(128)"`
	Requirements *string `json:"requirements"  gorm:"type:text"`

	Status               string  `json:"status"   gorm:"type:varchar(32);not null;default:'new'"`
	Priority             string  `json:"priority" gorm:"type:varchar(16);not null;default:'low'"`
	ExtractionConfidence float64 `json:"extraction_confidence"`

	// FullConversation is the complete transcript at the time of the last
	// extraction, stored as JSON.
	FullConversation Conversation `json:"full_conversation" gorm:"type:text"`

	// Request metadata captured on insert.
	SessionID string `json:"session_id" gorm:"type:varchar(128);index"`
	IPAddress string `json:"ip_address" gorm:"type:varchar(64)"`
	UserAgent string `json:"user_agent" gorm:"type:varchar(512)"`
	Referrer  string `json:"referrer"   gorm:"type:varchar(512)"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Lead.
func (Lead) TableName() string { return "chat_leads" }

// NewsletterSubscriber is a newsletter signup captured from the marketing
// site. Emails are stored lowercased and are unique; re-subscribing a
// previously unsubscribed address reactivates the row in place.
type NewsletterSubscriber struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"         gorm:"type:varchar(255);not null;uniqueIndex"`
	Source       string    `json:"source"        gorm:"type:varchar(128);not null;default:'unknown'"`
	Status       string    `json:"status"        gorm:"type:varchar(32);not null;default:'active'"`
	SubscribedAt time.Time `json:"subscribed_at"`
	IPAddress    string    `json:"ip_address"    gorm:"type:varchar(64)"`
	UserAgent    string    `json:"user_agent"    gorm:"type:varchar(512)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for NewsletterSubscriber.
func (NewsletterSubscriber) TableName() string { return "newsletter_subscribers" }

// Subscriber statuses.
const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)
