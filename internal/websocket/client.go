package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/game"
	"github.com/wfunc/math-tycoon/internal/logger"
	"go.uber.org/zap"
)

// WebSocket配置
const (
	// 写超时
	writeWait = 10 * time.Second

	// 读取pong超时
	pongWait = 60 * time.Second

	// ping发送周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024

	sendBufferSize = 64
)

// Client WebSocket客户端
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// ErrorPayload 错误消息内容
type ErrorPayload struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 把渲染端输入转成指令交给Dispatcher
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Warn("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.sendError(errors.New(errors.ErrMessageFormat))
		return
	}
	logger.LogWebSocketMessage("receive", msg.Type, msg.Data)

	var kind game.InputKind
	switch msg.Type {
	case MessageTypePong:
		return
	case MessageTypePing:
		c.send(&Message{Type: MessageTypePong})
		return
	case MessageTypeStart:
		kind = game.InputStart
	case MessageTypeRoll:
		kind = game.InputRoll
	case MessageTypeAnswer:
		kind = game.InputAnswer
	case MessageTypeDecision:
		kind = game.InputDecision
	default:
		c.sendError(errors.Newf(errors.ErrMessageFormat, "不支持的消息类型: %s", msg.Type))
		return
	}

	var cmd game.Command
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &cmd); err != nil {
			c.sendError(errors.Wrap(err, errors.ErrMessageFormat))
			return
		}
	}
	cmd.Kind = kind

	if c.Hub.dispatcher == nil {
		c.sendError(errors.New(errors.ErrNotImplemented))
		return
	}
	if err := c.Hub.dispatcher.Submit(cmd); err != nil {
		c.sendError(err)
		return
	}
	ack, _ := json.Marshal(map[string]string{"kind": string(kind)})
	c.send(&Message{Type: MessageTypeAck, Data: ack})
}

func (c *Client) send(msg *Message) {
	msg.Timestamp = time.Now().Unix()
	if err := c.Hub.SendToClient(c.ID, msg); err != nil {
		c.Hub.logger.Debug("发送消息失败", zap.String("client_id", c.ID), zap.Error(err))
	}
}

// sendError 发送错误消息
func (c *Client) sendError(err error) {
	p := ErrorPayload{Code: errors.GetCode(err), Message: err.Error()}
	if appErr, ok := err.(*errors.AppError); ok {
		p.Message = appErr.Message
		if appErr.Details != "" {
			p.Message += ": " + appErr.Details
		}
	}
	data, _ := json.Marshal(p)
	c.send(&Message{Type: MessageTypeError, Data: data})
}
