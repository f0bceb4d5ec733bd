package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is one turn contribution inside a lead's history.
type ChatMessage struct {
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RelevanceTag is the closed set of sales qualifications for a lead.
type RelevanceTag string

const (
	TagNotRelevant      RelevanceTag = "Not relevant"
	TagWeakLead         RelevanceTag = "Weak lead"
	TagHotLead          RelevanceTag = "Hot lead"
	TagVeryBigPotential RelevanceTag = "Very big potential customer"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

var ErrLeadNotFound = errors.New("lead not found")

type Lead struct {
	ID                    string        `json:"id"`
	Email                 string        `json:"email"`
	CompanyName           string        `json:"company_name,omitempty"`
	PhoneNumber           string        `json:"phone_number,omitempty"`
	RelevanceTag          RelevanceTag  `json:"relevance_tag"`
	Status                string        `json:"status"` // pending, completed
	ChatHistory           []ChatMessage `json:"chat_history"`
	CalendlyLinkClicked   bool          `json:"calendly_link_clicked"`
	ClarificationAttempts int           `json:"clarification_attempts"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// Factory
func NewLead(email string) (*Lead, error) {
	lead := &Lead{
		ID:           uuid.New().String(),
		Email:        email,
		RelevanceTag: TagWeakLead,
		Status:       StatusPending,
		ChatHistory:  []ChatMessage{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

// AppendMessage adds one message to the end of the history. The history is
// append-only; entries are never reordered or removed.
func (l *Lead) AppendMessage(sender Sender, text string) ChatMessage {
	msg := ChatMessage{
		Sender:    sender,
		Message:   text,
		Timestamp: time.Now(),
	}
	l.ChatHistory = append(l.ChatHistory, msg)
	l.UpdatedAt = time.Now()
	return msg
}

type ListLeadsFilter struct {
	Page         int
	Limit        int
	Status       string
	RelevanceTag string
}

// LeadRepositoryInterface is the persistence port for leads. The chat history
// is only ever grown through AppendMessage; Save persists the scalar fields
// and must not rewrite the stored history.
type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	AppendMessage(ctx context.Context, leadID string, msg ChatMessage) error
	Save(ctx context.Context, lead *Lead) error
	List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, int, error)
	SetCalendlyClicked(ctx context.Context, leadID string, clicked bool) error
}
