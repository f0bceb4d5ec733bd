package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smarttech/leadflow/internal/entity"
	"github.com/smarttech/leadflow/internal/infra/http/handlers"
	"github.com/smarttech/leadflow/internal/usecase"
)

func newConversationRouter(repo entity.LeadRepositoryInterface, streamer usecase.ChatStreamer, publisher usecase.BroadcastPublisher) *chi.Mux {
	uc := usecase.NewConversationUseCase(repo, streamer, publisher, nil, 0)
	handler := handlers.NewConversationHandler(uc)

	r := chi.NewRouter()
	r.Post("/conversation", handler.Handle)
	return r
}

func postConversation(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/conversation", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestConversationHandlerReturnsLeadID(t *testing.T) {
	mockRepo := new(MockLeadRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("AppendMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, entity.ErrLeadNotFound)

	streamer := &MockChatStreamer{Fragments: []string{"Hello!"}}
	streamer.On("StreamChat", mock.Anything, mock.Anything).Return(nil)

	publisher := newCapturingPublisher()
	router := newConversationRouter(mockRepo, streamer, publisher)

	rec := postConversation(t, router, map[string]string{
		"email":     "a@b.com",
		"message":   "Hi",
		"channelId": "chan-1",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var output usecase.ConversationOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &output))
	_, err := uuid.Parse(output.LeadID)
	assert.NoError(t, err)

	// Keep the async pipeline from outliving the test.
	publisher.waitTerminal(t)
}

func TestConversationHandlerRejectsInvalidJSON(t *testing.T) {
	router := newConversationRouter(new(MockLeadRepository), &MockChatStreamer{}, newCapturingPublisher())

	req := httptest.NewRequest(http.MethodPost, "/conversation", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationHandlerMapsNotFoundTo404(t *testing.T) {
	missingID := uuid.New().String()

	mockRepo := new(MockLeadRepository)
	mockRepo.On("FindByID", mock.Anything, missingID).Return(nil, entity.ErrLeadNotFound)

	router := newConversationRouter(mockRepo, &MockChatStreamer{}, newCapturingPublisher())

	rec := postConversation(t, router, map[string]string{
		"leadId":    missingID,
		"message":   "Hi",
		"channelId": "chan-1",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationHandlerMapsMissingEmailTo400(t *testing.T) {
	router := newConversationRouter(new(MockLeadRepository), &MockChatStreamer{}, newCapturingPublisher())

	rec := postConversation(t, router, map[string]string{
		"message":   "Hi",
		"channelId": "chan-1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
