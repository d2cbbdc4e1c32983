package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hivechat/internal/apperr"
	"hivechat/internal/entity"
	"hivechat/internal/middleware"
	"hivechat/internal/realtime"
	"hivechat/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

type stubMessageService struct {
	payload *service.MessagePayload
	pages   []service.MessagePayload
	err     error

	gotExternalID string
	gotChannelID  string
	gotMessageID  string
	gotContent    string
	gotCursor     string
}

func (s *stubMessageService) ListMessages(channelID, cursor string) ([]service.MessagePayload, error) {
	s.gotChannelID, s.gotCursor = channelID, cursor
	return s.pages, s.err
}

func (s *stubMessageService) CreateMessage(externalID, channelID, content string) (*service.MessagePayload, error) {
	s.gotExternalID, s.gotChannelID, s.gotContent = externalID, channelID, content
	return s.payload, s.err
}

func (s *stubMessageService) EditMessage(externalID, messageID, content string) (*service.MessagePayload, error) {
	s.gotExternalID, s.gotMessageID, s.gotContent = externalID, messageID, content
	return s.payload, s.err
}

func (s *stubMessageService) DeleteMessage(externalID, messageID string) (*service.MessagePayload, error) {
	s.gotExternalID, s.gotMessageID = externalID, messageID
	return s.payload, s.err
}

type stubChannelService struct {
	channel   *entity.Channel
	summaries []service.ChannelSummary
	err       error

	gotExternalID string
	gotChannelID  string
}

func (s *stubChannelService) ListChannels(externalID string) ([]service.ChannelSummary, error) {
	s.gotExternalID = externalID
	return s.summaries, s.err
}

func (s *stubChannelService) CreateChannel(externalID, name, description string) (*entity.Channel, error) {
	s.gotExternalID = externalID
	return s.channel, s.err
}

func (s *stubChannelService) JoinChannel(externalID, channelID string) error {
	s.gotExternalID, s.gotChannelID = externalID, channelID
	return s.err
}

func (s *stubChannelService) LeaveChannel(externalID, channelID string) error {
	s.gotExternalID, s.gotChannelID = externalID, channelID
	return s.err
}

func (s *stubChannelService) CanPost(userUUID, channelUUID entity.UUID) (bool, error) {
	return true, nil
}

type stubUserService struct {
	user *entity.User
	err  error
}

func (s *stubUserService) SyncUser(externalID, name, imageURL string) (*entity.User, error) {
	return s.user, s.err
}

func messageRouter(h *MessageHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/channels/{id}/messages", h.ListMessages).Methods("GET")
	router.HandleFunc("/channels/{id}/messages", h.CreateMessage).Methods("POST")
	router.HandleFunc("/messages/{id}", h.EditMessage).Methods("PATCH")
	router.HandleFunc("/messages/{id}", h.DeleteMessage).Methods("DELETE")
	return router
}

func TestCreateMessageReturns201(t *testing.T) {
	svc := &stubMessageService{payload: &service.MessagePayload{ID: "msg-1", ChannelID: "chan-1", Content: "hello", CreatedAt: time.Now()}}
	router := messageRouter(NewMessageHandler(svc))

	req := httptest.NewRequest("POST", "/channels/chan-1/messages", strings.NewReader(`{"externalId":"ext-a","content":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotExternalID != "ext-a" || svc.gotChannelID != "chan-1" || svc.gotContent != "hello" {
		t.Errorf("Handler did not forward the request: %+v", svc)
	}
	var payload service.MessagePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil || payload.ID != "msg-1" {
		t.Errorf("Response should be the created message, got %s", rec.Body.String())
	}
}

func TestCreateMessageRejectsBadJSON(t *testing.T) {
	router := messageRouter(NewMessageHandler(&stubMessageService{}))

	req := httptest.NewRequest("POST", "/channels/chan-1/messages", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad"), http.StatusBadRequest},
		{"forbidden", apperr.Forbidden("no"), http.StatusForbidden},
		{"not found", apperr.NotFound("message"), http.StatusNotFound},
		{"conflict", apperr.Conflict("deleted"), http.StatusConflict},
		{"internal", apperr.Internal(nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := messageRouter(NewMessageHandler(&stubMessageService{err: tc.err}))

			req := httptest.NewRequest("PATCH", "/messages/msg-1", strings.NewReader(`{"externalId":"ext-a","content":"x"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("Expected %d, got %d", tc.want, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("Error responses carry an error field, got %s", rec.Body.String())
			}
		})
	}
}

func TestDeleteMessageWorksWithoutBody(t *testing.T) {
	svc := &stubMessageService{payload: &service.MessagePayload{ID: "msg-1", IsDeleted: true, Content: entity.DeletedContent}}
	router := messageRouter(NewMessageHandler(svc))

	req := httptest.NewRequest("DELETE", "/messages/msg-1", nil)
	req.Header.Set("X-External-Id", "ext-a")
	rec := httptest.NewRecorder()

	store := sessions.NewCookieStore([]byte("test-secret"))
	middleware.IdentityMiddleware(store, router.ServeHTTP)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotExternalID != "ext-a" || svc.gotMessageID != "msg-1" {
		t.Errorf("Handler should fall back to the resolved identity, got %+v", svc)
	}
}

func TestListMessagesForwardsCursor(t *testing.T) {
	svc := &stubMessageService{pages: []service.MessagePayload{}}
	router := messageRouter(NewMessageHandler(svc))

	req := httptest.NewRequest("GET", "/channels/chan-1/messages?cursor=2026-05-01T12:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if svc.gotChannelID != "chan-1" || svc.gotCursor != "2026-05-01T12:00:00Z" {
		t.Errorf("Cursor not forwarded, got %+v", svc)
	}
}

func TestChannelEndpoints(t *testing.T) {
	svc := &stubChannelService{
		channel: &entity.Channel{UUID: "chan-1", Name: "general"},
		summaries: []service.ChannelSummary{
			{ID: "chan-1", Name: "general", MemberCount: 2, IsMember: true},
		},
	}
	h := NewChannelHandler(svc)
	router := mux.NewRouter()
	router.HandleFunc("/channels", h.ListChannels).Methods("GET")
	router.HandleFunc("/channels", h.CreateChannel).Methods("POST")
	router.HandleFunc("/channels/{id}/join", h.JoinChannel).Methods("POST")
	router.HandleFunc("/channels/{id}/leave", h.LeaveChannel).Methods("POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/channels?externalId=ext-a", nil))
	if rec.Code != http.StatusOK || svc.gotExternalID != "ext-a" {
		t.Fatalf("List failed: %d, %+v", rec.Code, svc)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/channels", strings.NewReader(`{"externalId":"ext-a","name":"general"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create should 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/channels/chan-1/join", strings.NewReader(`{"externalId":"ext-a"}`)))
	if rec.Code != http.StatusOK || svc.gotChannelID != "chan-1" {
		t.Fatalf("Join failed: %d, %+v", rec.Code, svc)
	}
	var ok map[string]bool
	if json.Unmarshal(rec.Body.Bytes(), &ok); !ok["ok"] {
		t.Errorf("Membership changes return ok:true, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/channels/chan-1/leave", strings.NewReader(`{"externalId":"ext-a"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Leave failed: %d", rec.Code)
	}
}

func TestSyncUserPinsSessionCookie(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-secret"))
	h := NewUserHandler(&stubUserService{user: &entity.User{UUID: "user-1", ExternalID: "ext-a", Name: "Ada"}}, store)

	req := httptest.NewRequest("POST", "/users/sync", strings.NewReader(`{"externalId":"ext-a","name":"Ada"}`))
	rec := httptest.NewRecorder()
	h.SyncUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "identity-session") {
		t.Errorf("Sync must set the identity session cookie, got %q", cookie)
	}
}

func TestPresenceEndpointReturnsSnapshot(t *testing.T) {
	registry := realtime.NewPresenceRegistry()
	registry.MarkConnected("ext-a", "Ada")
	h := NewPresenceHandler(registry)

	rec := httptest.NewRecorder()
	h.ListPresence(rec, httptest.NewRequest("GET", "/presence", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var entries []realtime.PresenceEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil || len(entries) != 1 {
		t.Fatalf("Expected one presence entry, got %s", rec.Body.String())
	}
	if entries[0].ExternalID != "ext-a" || entries[0].Name != "Ada" {
		t.Errorf("Unexpected entry %+v", entries[0])
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if json.Unmarshal(rec.Body.Bytes(), &body); body["ok"] != true {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}
