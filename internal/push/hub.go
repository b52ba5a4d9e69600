package push

import (
	"context"
	"encoding/json"
	"net/http"

	"booking-ledger-go/internal/config"
	"booking-ledger-go/pkg/logger"
	"github.com/olahol/melody"
)

const sessionUserKey = "user_id"

// Hub delivers push notifications over websockets. Each authenticated client
// attaches a session keyed by its user id; Send broadcasts to every session
// belonging to one of the recipients.
type Hub struct {
	m   *melody.Melody
	log logger.Logger
}

func NewHub(cfg config.PushConfig, log logger.Logger) *Hub {
	m := melody.New()
	m.Config.PingPeriod = cfg.PingPeriod
	m.Config.PongWait = cfg.PongWait

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		log.Debug("push: client connected", "user_id", userID)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		log.Debug("push: client disconnected", "user_id", userID)
	})
	m.HandleError(func(s *melody.Session, err error) {
		log.Warn("push: websocket error", "error", err)
	})

	return &Hub{m: m, log: log}
}

// Attach upgrades the request to a websocket session bound to the user.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, userID string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]interface{}{sessionUserKey: userID})
}

type pushMessage struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send broadcasts the notification to every live session of the given
// recipients. It returns the number of sessions reached; recipients without
// a session are simply skipped.
func (h *Hub) Send(ctx context.Context, recipientIDs []string, title, body string) (int, error) {
	if len(recipientIDs) == 0 {
		return 0, nil
	}

	payload, err := json.Marshal(pushMessage{Type: "notification", Title: title, Body: body})
	if err != nil {
		return 0, err
	}

	recipients := make(map[string]struct{}, len(recipientIDs))
	for _, id := range recipientIDs {
		recipients[id] = struct{}{}
	}

	matches := func(s *melody.Session) bool {
		value, ok := s.Get(sessionUserKey)
		if !ok {
			return false
		}
		userID, ok := value.(string)
		if !ok {
			return false
		}
		_, ok = recipients[userID]
		return ok
	}

	reached := 0
	sessions, err := h.m.Sessions()
	if err == nil {
		for _, s := range sessions {
			if matches(s) {
				reached++
			}
		}
	}

	if err := h.m.BroadcastFilter(payload, matches); err != nil {
		return reached, err
	}
	return reached, nil
}

func (h *Hub) Close() error {
	return h.m.Close()
}
