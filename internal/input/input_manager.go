package input

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"hivechat/internal/handler"
	"hivechat/internal/metrics"
	"hivechat/internal/middleware"
	"hivechat/internal/nlog"
	"hivechat/internal/realtime"
	"hivechat/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

type IptConfig struct {
	ServerPort   uint16
	ReadTimeout  int64
	WriteTimeout int64
	SecretKey    string
}

type InputManager struct { // Manages the HTTP and websocket input of the server
	running atomic.Bool
	paused  atomic.Bool

	logger nlog.Logger
	server *http.Server

	stopFromOutsideChan chan struct{}
	doneFromInsideChan  chan struct{}

	userService    service.UserService
	channelService service.ChannelService
	messageService service.MessageService

	hub      *realtime.Hub
	presence *realtime.PresenceRegistry
	metrics  *metrics.Metrics
}

func NewInputManager() *InputManager {
	return &InputManager{
		running:             atomic.Bool{},
		paused:              atomic.Bool{},
		stopFromOutsideChan: make(chan struct{}),
		doneFromInsideChan:  make(chan struct{}),
	}
}

func (i *InputManager) IsReady() bool {
	return i.logger != nil &&
		i.userService != nil && i.channelService != nil && i.messageService != nil &&
		i.hub != nil && i.presence != nil && i.metrics != nil
}

func (i *InputManager) IsRunning() bool {
	return i.running.Load()
}

func (i *InputManager) SetLogger(l nlog.Logger) {
	i.logger = l
}

func (i *InputManager) SetServices(us service.UserService, cs service.ChannelService, ms service.MessageService) {
	i.userService = us
	i.channelService = cs
	i.messageService = ms
}

func (i *InputManager) SetRealtime(hub *realtime.Hub, presence *realtime.PresenceRegistry) {
	i.hub = hub
	i.presence = presence
}

func (i *InputManager) SetMetrics(m *metrics.Metrics) {
	i.metrics = m
}

func (i *InputManager) Logf(format string, a ...any) {
	i.logger.Logf(format, a...)
}

func (i *InputManager) SetPause(paused bool) {
	i.paused.Store(paused)
}

func (i *InputManager) IsPaused() bool {
	return i.paused.Load()
}

// PauseMiddleware sheds every request with a 503 while the manager is
// draining, without tearing the listener down.
func (i *InputManager) PauseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i.IsPaused() {
			http.Error(w, "Service is temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (i *InputManager) Run(ctx context.Context, cfg *IptConfig) error {
	i.Logf("Input service started...")

	if !i.IsReady() {
		return fmt.Errorf("The Input manager is not ready... Missing components")
	}

	cookieStore := sessions.NewCookieStore([]byte(cfg.SecretKey))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(7 * 24 * time.Hour.Seconds()),
	}

	// Handlers
	userHandler := handler.NewUserHandler(i.userService, cookieStore)
	channelHandler := handler.NewChannelHandler(i.channelService)
	messageHandler := handler.NewMessageHandler(i.messageService)
	presenceHandler := handler.NewPresenceHandler(i.presence)
	wsHandler := handler.NewWSHandler(i.hub, i.logger)

	mw := func(h func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
		return middleware.IdentityMiddleware(cookieStore, h)
	}

	// Router
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.Health).Methods("GET")
	r.Handle("/metrics", i.metrics.Handler()).Methods("GET")

	r.HandleFunc("/users/sync", userHandler.SyncUser).Methods("POST")

	r.HandleFunc("/channels", mw(channelHandler.ListChannels)).Methods("GET")
	r.HandleFunc("/channels", mw(channelHandler.CreateChannel)).Methods("POST")
	r.HandleFunc("/channels/{id}/join", mw(channelHandler.JoinChannel)).Methods("POST")
	r.HandleFunc("/channels/{id}/leave", mw(channelHandler.LeaveChannel)).Methods("POST")
	r.HandleFunc("/channels/{id}/messages", mw(messageHandler.ListMessages)).Methods("GET")
	r.HandleFunc("/channels/{id}/messages", mw(messageHandler.CreateMessage)).Methods("POST")
	r.HandleFunc("/messages/{id}", mw(messageHandler.EditMessage)).Methods("PATCH")
	r.HandleFunc("/messages/{id}", mw(messageHandler.DeleteMessage)).Methods("DELETE")

	r.HandleFunc("/presence", presenceHandler.ListPresence).Methods("GET")

	// The event channel lives on the same listener, so the server-wide
	// read/write timeouts stay at zero; the hub runs its own ping/pong
	// deadlines per connection.
	r.HandleFunc("/ws", wsHandler.Serve)

	i.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:        i.PauseMiddleware(r),
		ReadTimeout:    time.Duration(cfg.ReadTimeout * int64(time.Second)),
		WriteTimeout:   time.Duration(cfg.WriteTimeout * int64(time.Second)),
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		select {
		case <-ctx.Done():
			i.Logf("Received stop signal. Shutting down...")
		case <-i.stopFromOutsideChan:
			i.Logf("Server was asked to stop. Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := i.server.Shutdown(shutdownCtx); err != nil {
			i.Logf("Error during shutdown... %v\n", err)
		}
		close(i.doneFromInsideChan)
	}()

	i.Logf("Http server starting on port {%d}", cfg.ServerPort)
	i.running.Store(true)

	err := i.server.ListenAndServe()
	i.running.Store(false)
	if err != http.ErrServerClosed {
		i.Logf("FATAL: HTTP Server error{%v}\n", err)
		return err
	}

	return nil
}

func (i *InputManager) Stop() {
	close(i.stopFromOutsideChan)
	<-i.doneFromInsideChan
}
