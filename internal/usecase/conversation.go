package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/smarttech/leadflow/internal/entity"
)

type ConversationUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Streamer  ChatStreamer
	Broadcast BroadcastPublisher
	Notifier  HotLeadNotifier

	// TurnTimeout bounds one turn pipeline end to end. A hung upstream
	// stream would otherwise leave the lead "pending" forever.
	TurnTimeout time.Duration

	locks *leadLocker
}

func NewConversationUseCase(
	repo entity.LeadRepositoryInterface,
	streamer ChatStreamer,
	broadcast BroadcastPublisher,
	notifier HotLeadNotifier,
	turnTimeout time.Duration,
) *ConversationUseCase {
	return &ConversationUseCase{
		Repo:        repo,
		Streamer:    streamer,
		Broadcast:   broadcast,
		Notifier:    notifier,
		TurnTimeout: turnTimeout,
		locks:       newLeadLocker(),
	}
}

// Execute resolves or creates the lead, appends the user message and launches
// the streaming pipeline. It returns the lead id immediately; everything that
// happens after the stream starts arrives via the broadcast channel only.
func (uc *ConversationUseCase) Execute(ctx context.Context, input ConversationInput) (*ConversationOutput, error) {
	if validationErrors := ValidateConversationInput(input); len(validationErrors) > 0 {
		errMsg := "validation failed: "
		for _, e := range validationErrors {
			errMsg += e.Field + " (" + e.Message + "), "
		}
		return nil, &DomainError{
			Code:    CodeValidationError,
			Message: errMsg,
		}
	}

	var lead *entity.Lead

	if input.LeadID != "" {
		if _, err := uuid.Parse(input.LeadID); err != nil {
			return nil, &DomainError{
				Code:    CodeInvalidLeadID,
				Message: "invalid leadId format",
			}
		}

		found, err := uc.Repo.FindByID(ctx, input.LeadID)
		if err != nil {
			if errors.Is(err, entity.ErrLeadNotFound) {
				return nil, &DomainError{
					Code:    CodeLeadNotFound,
					Message: fmt.Sprintf("conversation with ID %s not found", input.LeadID),
				}
			}
			return nil, &TechnicalError{
				Code:    CodeDatabaseError,
				Message: "failed to load lead: " + err.Error(),
			}
		}
		lead = found
	} else {
		if input.Email == "" {
			return nil, &DomainError{
				Code:    CodeEmailRequired,
				Message: "email is required to start a new conversation",
			}
		}

		newLead, err := entity.NewLead(input.Email)
		if err != nil {
			return nil, &DomainError{
				Code:    CodeValidationError,
				Message: err.Error(),
			}
		}
		if err := uc.Repo.Create(ctx, newLead); err != nil {
			return nil, &TechnicalError{
				Code:    CodeDatabaseError,
				Message: "failed to create lead: " + err.Error(),
			}
		}
		lead = newLead
		log.Printf("[CONVERSATION] new lead created: %s (%s)", lead.ID, lead.Email)
	}

	// The user's own message must land before the model is ever called.
	userMsg := lead.AppendMessage(entity.SenderUser, input.Message)
	if err := uc.Repo.AppendMessage(ctx, lead.ID, userMsg); err != nil {
		return nil, &TechnicalError{
			Code:    CodeDatabaseError,
			Message: "could not update conversation history: " + err.Error(),
		}
	}

	runner := &turnRunner{
		lead:      lead,
		channelID: input.ChannelID,
		repo:      uc.Repo,
		streamer:  uc.Streamer,
		broadcast: uc.Broadcast,
		notifier:  uc.Notifier,
	}
	go uc.runTurn(runner, lead.ID)

	return &ConversationOutput{LeadID: lead.ID}, nil
}

func (uc *ConversationUseCase) runTurn(runner *turnRunner, leadID string) {
	lk := uc.locks.Acquire(leadID)
	defer uc.locks.Release(leadID, lk)

	ctx := context.Background()
	if uc.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.TurnTimeout)
		defer cancel()
	}

	runner.Run(ctx)
}
