package usecase

type ConversationInput struct {
	LeadID    string `json:"leadId,omitempty"`
	Email     string `json:"email,omitempty"`
	Message   string `json:"message"`
	ChannelID string `json:"channelId"`
}

type ConversationOutput struct {
	LeadID string `json:"leadId"`
}

// ChunkPayload is published once per visible fragment.
type ChunkPayload struct {
	Chunk string `json:"chunk"`
	Done  bool   `json:"done"`
}

// CompletionPayload is the terminal event of a successful turn. Exactly one is
// published per turn. QualificationStatus is "STRONG", "WEAK" or null; Error
// carries a finalize persistence failure without blocking completion.
type CompletionPayload struct {
	Chunk               string  `json:"chunk"`
	Done                bool    `json:"done"`
	QualificationStatus *string `json:"qualificationStatus"`
	Error               string  `json:"error,omitempty"`
}

// StreamErrorPayload is published when the token source fails mid-turn. No
// done event follows it.
type StreamErrorPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}
