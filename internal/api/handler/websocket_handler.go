package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketManager fans parking notifications out to connected clients.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	mutex      sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
	}
}

func (m *WebSocketManager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client] = true
			m.mutex.Unlock()
			logger.Log.Debug("websocket client connected", zap.Int("total", len(m.clients)))

		case client := <-m.unregister:
			m.mutex.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				client.Close()
			}
			m.mutex.Unlock()
			logger.Log.Debug("websocket client disconnected", zap.Int("total", len(m.clients)))

		case message := <-m.broadcast:
			m.mutex.Lock()
			for client := range m.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					logger.Log.Warn("dropping websocket client", zap.Error(err))
					client.Close()
					delete(m.clients, client)
				}
			}
			m.mutex.Unlock()
		}
	}
}

// NotifyParkingEvent implements service.ParkingNotifier. Messages are
// dropped rather than blocking the detection pipeline.
func (m *WebSocketManager) NotifyParkingEvent(event domain.ParkingNotification) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("could not marshal parking notification", zap.Error(err))
		return
	}

	select {
	case m.broadcast <- message:
	default:
		logger.Log.Warn("broadcast channel full, dropping notification")
	}
}

type WebSocketHandler struct {
	manager *WebSocketManager
}

func NewWebSocketHandler(manager *WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.manager.register <- conn

	go func() {
		defer func() {
			h.manager.unregister <- conn
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Log.Debug("websocket read error", zap.Error(err))
				}
				return
			}
		}
	}()
}
