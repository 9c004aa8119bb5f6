package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aussiemaniacs/FafoV2/internal/events"
)

// Server bridges the Redis event channel to websocket clients.
type Server struct {
	hub           *Hub
	rdb           *redis.Client
	allowedOrigin string
	upgrader      websocket.Upgrader
	log           logrus.FieldLogger
}

// NewServer builds a Server. An allowedOrigin of "" or "*" accepts any
// Origin header.
func NewServer(hub *Hub, rdb *redis.Client, allowedOrigin string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		hub:           hub,
		rdb:           rdb,
		allowedOrigin: strings.TrimRight(allowedOrigin, "/"),
		log:           log,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.allowedOrigin == "" || s.allowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// non-browser client
		return true
	}
	return strings.TrimRight(origin, "/") == s.allowedOrigin
}

// RunRedisSubscriber forwards every message on the events channel to the
// hub until ctx is done.
func (s *Server) RunRedisSubscriber(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	sub := s.rdb.Subscribe(ctx, events.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !s.hub.Broadcast(ctx, []byte(msg.Payload)) {
				return
			}
		}
	}
}

// HandleWS upgrades the request and attaches the connection to the hub.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		s.log.WithField("error", err).Warn("ws upgrade")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	welcome, _ := json.Marshal(events.Envelope{
		Type:    "welcome",
		Payload: map[string]string{"now": time.Now().UTC().Format(time.RFC3339Nano)},
	})
	client.send <- welcome

	if !s.hub.attach(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
