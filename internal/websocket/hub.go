package websocket

import (
	"sync"

	"go.uber.org/zap"
)

// Hub WebSocket 연결 관리 및 브로드캐스트
// 레이팅 재계산이 끝날 때마다 접속 중인 모든 클라이언트에게
// 리더보드 갱신 메시지를 전파함
type Hub struct {
	// 사용자별 연결 저장 (userID -> *Client)
	clients map[string]*Client
	mu      sync.RWMutex

	// 브로드캐스트 채널
	broadcast chan *Message

	// 등록/해제 채널
	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

// Message WebSocket 메시지
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// RatingUpdateMessage 레이팅 재계산 완료 메시지
type RatingUpdateMessage struct {
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
	Players    int  `json:"players"`
}

// NewHub Hub 생성
func NewHub() *Hub {
	logger, _ := zap.NewProduction()
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run Hub 실행
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Broadcast 전체 클라이언트에게 메시지 전송 (논블로킹)
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	select {
	case h.broadcast <- &Message{Type: msgType, Payload: payload}:
	default:
		h.logger.Warn("Broadcast channel full, dropping message",
			zap.String("type", msgType))
	}
}

// registerClient 클라이언트 등록
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// 기존 연결이 있으면 닫기
	if oldClient, exists := h.clients[client.userID]; exists {
		close(oldClient.send)
		h.logger.Info("Replaced existing WebSocket connection",
			zap.String("userId", client.userID))
	}

	h.clients[client.userID] = client
	h.logger.Info("WebSocket client registered",
		zap.String("userId", client.userID),
		zap.Int("totalClients", len(h.clients)))
}

// unregisterClient 클라이언트 해제
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.clients[client.userID]; exists && current == client {
		delete(h.clients, client.userID)
		close(client.send)
		h.logger.Info("WebSocket client unregistered",
			zap.String("userId", client.userID),
			zap.Int("totalClients", len(h.clients)))
	}
}

// broadcastMessage 모든 클라이언트에게 메시지 전달
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, client := range h.clients {
		select {
		case client.send <- message:
		default:
			// 송신 버퍼가 가득 찬 느린 클라이언트는 건너뜀
			h.logger.Warn("Client send buffer full, skipping",
				zap.String("userId", userID))
		}
	}
}
