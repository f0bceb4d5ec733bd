package usecase

import (
	"context"

	"github.com/smarttech/leadflow/internal/entity"
)

// ChatStreamer is the token stream source for one AI reply. Fragments are
// delivered to onFragment in arrival order; the call returns nil when the
// stream ends naturally, or the stream error otherwise.
type ChatStreamer interface {
	StreamChat(ctx context.Context, history []entity.ChatMessage, onFragment func(fragment string)) error
}

// BroadcastPublisher fans events out to the subscribers of a conversation
// channel. Publishing is fire and forget: implementations log their own
// failures and never raise them back into the turn pipeline.
type BroadcastPublisher interface {
	Publish(ctx context.Context, channel, event string, data any)
}

type HotLeadNotifier interface {
	SendHotLeadAlert(lead *entity.Lead) error
}
