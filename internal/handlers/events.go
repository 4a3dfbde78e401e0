package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/pkg/world"
	"github.com/redis/go-redis/v9"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ObserverRegistry tracks websocket viewers so updates can list them
type ObserverRegistry interface {
	AddObserver(mapID int, p world.Point) (int, error)
	RemoveObserver(mapID, id int)
}

// EventsHandler relays position updates of one map over a websocket
type EventsHandler struct {
	redisClient *redis.Client
	observers   ObserverRegistry
	logger      *slog.Logger
}

// NewEventsHandler creates a new events handler. observers may be nil.
func NewEventsHandler(redisClient *redis.Client, observers ObserverRegistry, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		redisClient: redisClient,
		observers:   observers,
		logger:      logger,
	}
}

// ServeHTTP handles websocket requests for map events
// GET /v1/events/maps/{mapID}?x=&y=
// When x and y are given the connection is registered as an observer there.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mapID, err := strconv.Atoi(r.PathValue("mapID"))
	if err != nil || mapID <= 0 {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid map id.")
		return
	}
	at, watch, err := observerPoint(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid observer position.")
		return
	}

	observerID := 0
	if watch && h.observers != nil {
		if observerID, err = h.observers.AddObserver(mapID, at); err != nil {
			writeError(w, h.logger, http.StatusNotFound, "Unknown map.")
			return
		}
		defer h.observers.RemoveObserver(mapID, observerID)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.New().String()
	log := h.logger.With("session_id", sessionID, "map_id", mapID, "observer_id", observerID)
	log.Info("Websocket connection established", "remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	channel := events.Channel(mapID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			log.Error("Failed to close pubsub", "error", err)
		}
	}()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error("Failed to subscribe", "channel", channel, "error", err)
		return
	}

	// The read loop only watches for close frames and pongs
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug("Websocket read error", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	msgChan := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info("Websocket client disconnected")
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Debug("Failed to write event", "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("Failed to write ping", "error", err)
				return
			}
		}
	}
}

// observerPoint reads the optional x and y query values
func observerPoint(r *http.Request) (world.Point, bool, error) {
	q := r.URL.Query()
	if q.Get("x") == "" && q.Get("y") == "" {
		return world.Point{}, false, nil
	}
	x, err := strconv.Atoi(q.Get("x"))
	if err != nil {
		return world.Point{}, false, err
	}
	y, err := strconv.Atoi(q.Get("y"))
	if err != nil {
		return world.Point{}, false, err
	}
	return world.Point{X: x, Y: y}, true, nil
}
