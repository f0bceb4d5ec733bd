package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/smarttech/leadflow/internal/entity"
)

// Broadcast event names. Subscribers treat the done:true payload on
// EventTurnChunk as a one-shot terminal signal.
const (
	EventTurnChunk       = "turn_chunk"
	EventTurnStreamError = "turn_stream_error"
)

type turnState int

const (
	stateAwaitingStream turnState = iota
	stateStreaming
	stateFinalizing
	stateDone
	stateFailed
)

// turnRunner drives a single AI reply turn: it consumes the token stream,
// demultiplexes qualification markers out of the fragments, accumulates the
// visible reply, commits the lead mutation once at finalize and publishes
// exactly one terminal event on every path.
type turnRunner struct {
	lead      *entity.Lead
	channelID string

	repo      entity.LeadRepositoryInterface
	streamer  ChatStreamer
	broadcast BroadcastPublisher
	notifier  HotLeadNotifier // optional

	state   turnState
	reply   strings.Builder
	outcome Outcome
}

func (t *turnRunner) Run(ctx context.Context) {
	t.state = stateAwaitingStream

	// Reload under the per-lead lock so the prompt sees any turn that
	// finished while this one was queued.
	if fresh, err := t.repo.FindByID(ctx, t.lead.ID); err == nil {
		t.lead = fresh
	} else {
		log.Printf("[TURN] could not reload lead %s, using captured state: %v", t.lead.ID, err)
	}

	err := t.streamer.StreamChat(ctx, t.lead.ChatHistory, func(fragment string) {
		t.onFragment(ctx, fragment)
	})
	if err != nil {
		t.fail(ctx, err)
		return
	}

	t.finalize(ctx)
}

func (t *turnRunner) onFragment(ctx context.Context, fragment string) {
	if fragment == "" {
		return
	}
	if t.state == stateAwaitingStream {
		t.state = stateStreaming
	}

	visible, outcome := StripMarker(fragment)
	if outcome != OutcomeNone {
		// Last non-none observation wins. The script never produces two
		// markers in one turn, but nothing structurally prevents it.
		t.outcome = outcome
	}

	// A marker-only fragment still records the outcome, but empty chunks are
	// never forwarded downstream.
	if strings.TrimSpace(visible) == "" {
		return
	}

	t.reply.WriteString(visible)
	t.broadcast.Publish(ctx, t.channelID, EventTurnChunk, ChunkPayload{Chunk: visible, Done: false})
}

// finalize commits the turn: history append, qualification/status mutation,
// one terminal event. Persistence is append-only for the history: the reply
// goes through AppendMessage and Save touches scalar fields only, so a user
// message that landed while this turn was streaming is never overwritten.
// A persistence failure does not roll back the in-memory mutation and does
// not block completion; it rides on the done payload instead.
func (t *turnRunner) finalize(ctx context.Context) {
	t.state = stateFinalizing

	reply := strings.TrimSpace(t.reply.String())
	var persistErr error

	if reply != "" {
		msg := t.lead.AppendMessage(entity.SenderAI, reply)
		if err := t.repo.AppendMessage(ctx, t.lead.ID, msg); err != nil {
			persistErr = err
			log.Printf("[TURN] failed to append reply for lead %s: %v", t.lead.ID, err)
		}
	}

	needsSave := false
	switch t.outcome {
	case OutcomeStrong:
		t.lead.RelevanceTag = entity.TagHotLead
		t.lead.Status = entity.StatusCompleted
		needsSave = true
		log.Printf("[TURN] lead %s qualified as STRONG, tag: %s", t.lead.ID, t.lead.RelevanceTag)
	case OutcomeWeak:
		t.lead.RelevanceTag = entity.TagWeakLead
		t.lead.Status = entity.StatusCompleted
		needsSave = true
		log.Printf("[TURN] lead %s qualified as WEAK, tag: %s", t.lead.ID, t.lead.RelevanceTag)
	}

	if needsSave {
		if err := t.repo.Save(ctx, t.lead); err != nil {
			if persistErr == nil {
				persistErr = err
			}
			log.Printf("[TURN] failed to save lead %s after AI turn: %v", t.lead.ID, err)
		}
	}

	payload := CompletionPayload{Done: true}
	if s := t.outcome.String(); s != "" {
		payload.QualificationStatus = &s
	}
	if persistErr != nil {
		payload.Error = "failed to save lead updates: " + persistErr.Error()
	}
	t.broadcast.Publish(ctx, t.channelID, EventTurnChunk, payload)
	t.state = stateDone

	if t.outcome == OutcomeStrong && t.notifier != nil {
		// Best effort, off the turn path. Same policy as the broadcast.
		go func(lead entity.Lead) {
			if err := t.notifier.SendHotLeadAlert(&lead); err != nil {
				log.Printf("[TURN] hot lead alert for %s failed: %v", lead.ID, err)
			}
		}(*t.lead)
	}
}

// fail ends the turn without touching the lead: no history append, no
// qualification mutation, one error event.
func (t *turnRunner) fail(ctx context.Context, err error) {
	t.state = stateFailed
	log.Printf("[TURN] stream error for lead %s: %v", t.lead.ID, err)
	t.broadcast.Publish(ctx, t.channelID, EventTurnStreamError, StreamErrorPayload{
		Message: "AI streaming failed.",
		Detail:  err.Error(),
	})
}
