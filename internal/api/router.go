package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/math-tycoon/internal/archive"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/game"
	"github.com/wfunc/math-tycoon/internal/middleware"
	ws "github.com/wfunc/math-tycoon/internal/websocket"
	"go.uber.org/zap"
)

// Router API路由器
type Router struct {
	engine    *gin.Engine
	runner    *game.Runner
	hub       *ws.Hub
	game      *GameHandler
	wsHandler *WebSocketHandler
	log       *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(runner *game.Runner, store archive.Store, hub *ws.Hub, log *zap.Logger) *Router {
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())

	r := &Router{
		engine:    engine,
		runner:    runner,
		hub:       hub,
		game:      NewGameHandler(runner, store, log),
		wsHandler: NewWebSocketHandler(hub, log),
		log:       log,
	}
	r.setupRoutes()
	return r
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		g := v1.Group("/game")
		{
			g.GET("/snapshot", r.game.Snapshot)
			g.GET("/board", r.game.Board)
			g.POST("/start", r.game.Start)
			g.POST("/roll", r.game.Roll)
			g.POST("/answer", r.game.Answer)
			g.POST("/decision", r.game.Decision)
		}

		v1.GET("/practice", r.game.Practice)
		v1.GET("/mistakes", r.game.Mistakes)
	}

	r.engine.GET("/ws", r.wsHandler.GameWebSocket)

	r.engine.NoRoute(func(c *gin.Context) {
		appErr := errors.New(errors.ErrNotFound).WithDetails(c.Request.Method + " " + c.Request.URL.Path)
		appErr.Stack = nil
		c.JSON(http.StatusNotFound, errors.NewErrorResponse(appErr))
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	snap := r.runner.Engine().Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
		"phase":   snap.Phase,
		"game_id": snap.GameID,
		"online":  r.hub.GetOnlineCount(),
	})
}

// Handler 用于http.Server
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
