package register

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"evently/events"
	"evently/middleware"
	"evently/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

type checkinEvent struct {
	RegistrationID string    `json:"registrationid"`
	Name           string    `json:"name"`
	CheckedInAt    time.Time `json:"checkedInAt"`
}

// CheckinFeed streams check-in events for an event to its organizer. The
// token arrives as a query param since browsers cannot set headers on ws
// dials.
func CheckinFeed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims, err := middleware.ValidateRawToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	event, err := events.FindByID(r.Context(), ps.ByName("eventid"))
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}
	if event.OrganizerID != claims.UserID && !utils.Contains(claims.Role, "admin") {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	key := event.EventID

	mu.Lock()
	subscribers[key] = append(subscribers[key], conn)
	mu.Unlock()

	for {
		// Keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	mu.Lock()
	conns := subscribers[key]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[key] = newList
	mu.Unlock()

	conn.Close()
}

func broadcastCheckin(eventID string, evt checkinEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("broadcastCheckin: marshal error: %v", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()

	conns := subscribers[eventID]
	newList := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}
	subscribers[eventID] = newList
}
