package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/game"
	"go.uber.org/zap"
)

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 消息类型
const (
	// 系统消息
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"
	MessageTypeAck       = "ack"

	// 服务端推送
	MessageTypeSnapshot = "snapshot"

	// 渲染端输入
	MessageTypeStart    = "start"
	MessageTypeRoll     = "roll"
	MessageTypeAnswer   = "answer"
	MessageTypeDecision = "decision"
)

// heartbeatPeriod 应用层心跳间隔
const heartbeatPeriod = 30 * time.Second

// Dispatcher 接收渲染端输入（由game.Runner实现）
type Dispatcher interface {
	Submit(cmd game.Command) error
}

// SnapshotSource 新连接建立时推送的最新快照
type SnapshotSource interface {
	Snapshot() *game.Snapshot
}

// Hub WebSocket连接管理中心
type Hub struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// 只保留最新快照，推送慢于发布时合并
	latest atomic.Pointer[[]byte]
	dirty  chan struct{}

	dispatcher Dispatcher
	source     SnapshotSource
	done       chan struct{}
	logger     *zap.Logger
}

// NewHub 创建Hub
func NewHub(logger *zap.Logger, dispatcher Dispatcher, source SnapshotSource) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		dirty:      make(chan struct{}, 1),
		dispatcher: dispatcher,
		source:     source,
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run 运行Hub直到ctx结束，结束时关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case data := <-h.broadcast:
			h.broadcastData(data)

		case <-h.dirty:
			if data := h.latest.Load(); data != nil {
				h.broadcastData(*data)
			}

		case <-ticker.C:
			h.Broadcast(&Message{Type: MessageTypePing, Timestamp: time.Now().Unix()})
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
	}
	h.logger.Info("WebSocket Hub已停止")
}

// registerClient 注册客户端，推送连接成功消息和最新快照
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接", zap.String("client_id", client.ID))

	h.SendToClient(client.ID, &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"client_id":"` + client.ID + `"}`),
	})
	if h.source == nil {
		return
	}
	snap := h.source.Snapshot()
	if snap == nil {
		return
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		h.logger.Error("序列化快照失败", zap.Error(err))
		return
	}
	if err := h.sendData(client.ID, data); err != nil {
		h.logger.Warn("推送快照失败", zap.String("client_id", client.ID), zap.Error(err))
	}
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端断开", zap.String("client_id", client.ID))
}

func (h *Hub) broadcastData(data []byte) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满", zap.String("client_id", client.ID))
		}
	}
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, errors.ErrMessageFormat)
	}
	return h.sendData(clientID, data)
}

func (h *Hub) sendData(clientID string, data []byte) error {
	// 持读锁发送，避免与注销时关闭通道并发
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	client, ok := h.clients[clientID]
	if !ok {
		return errors.New(errors.ErrWebSocketClosed, clientID)
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return errors.New(errors.ErrWebSocketSend, "发送缓冲区已满")
	}
}

// Broadcast 广播消息，缓冲区满时丢弃
func (h *Hub) Broadcast(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("广播队列已满，丢弃消息", zap.String("type", message.Type))
	}
}

// PublishSnapshot 推送快照，可作为Engine.Subscribe的回调（不阻塞）
func (h *Hub) PublishSnapshot(snap *game.Snapshot) {
	data, err := encodeSnapshot(snap)
	if err != nil {
		h.logger.Error("序列化快照失败", zap.Error(err))
		return
	}
	h.latest.Store(&data)
	select {
	case h.dirty <- struct{}{}:
	default:
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return errors.New(errors.ErrWebSocketClosed, "hub已停止")
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// GetOnlineCount 在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// snapshotEnvelope 与Message字段一致，快照只序列化一次
type snapshotEnvelope struct {
	Type      string         `json:"type"`
	Data      *game.Snapshot `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

func encodeSnapshot(snap *game.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshotEnvelope{
		Type:      MessageTypeSnapshot,
		Data:      snap,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMessageFormat, "快照")
	}
	return data, nil
}
