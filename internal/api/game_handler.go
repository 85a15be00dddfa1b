package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/math-tycoon/internal/archive"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/game"
	"github.com/wfunc/math-tycoon/internal/models"
	"go.uber.org/zap"
)

// waitTimeout wait=true 时等待指令执行完成的上限
const waitTimeout = 30 * time.Second

// GameHandler 对局处理器
type GameHandler struct {
	runner  *game.Runner
	archive archive.Store
	logger  *zap.Logger
}

// NewGameHandler 创建对局处理器
func NewGameHandler(runner *game.Runner, store archive.Store, logger *zap.Logger) *GameHandler {
	return &GameHandler{runner: runner, archive: store, logger: logger}
}

// StartRequest 开局请求
type StartRequest struct {
	Mode game.Mode `json:"mode" binding:"required"`
}

// AnswerRequest 答题请求
type AnswerRequest struct {
	Option int `json:"option" binding:"required"`
}

// DecisionRequest 升级确认请求
type DecisionRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// AcceptedResponse 指令已入队
type AcceptedResponse struct {
	Accepted bool           `json:"accepted"`
	Kind     game.InputKind `json:"kind"`
	Version  uint64         `json:"version"` // 入队时的快照版本
}

// MistakesResponse 错题本
type MistakesResponse struct {
	Records []models.WrongAnswer `json:"records"`
	Summary *archive.Summary     `json:"summary"`
}

// Snapshot 获取对局快照
// @Summary 对局快照
// @Tags Game
// @Produce json
// @Success 200 {object} game.Snapshot
// @Router /api/v1/game/snapshot [get]
func (h *GameHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Engine().Snapshot())
}

// Board 棋盘定义
// @Summary 棋盘定义
// @Tags Game
// @Produce json
// @Router /api/v1/game/board [get]
func (h *GameHandler) Board(c *gin.Context) {
	b := h.runner.Engine().Board()
	c.JSON(http.StatusOK, gin.H{
		"name":   b.Name,
		"tiles":  b.Tiles,
		"chance": b.Chance,
	})
}

// Start 开局
// @Summary 开始新对局
// @Tags Game
// @Accept json
// @Produce json
// @Param request body StartRequest true "模式：P_VS_AI / P_VS_P / P_VS_P_VS_AI"
// @Param wait query bool false "等待执行完成并返回快照"
// @Success 202 {object} AcceptedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/game/start [post]
func (h *GameHandler) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrInvalidParam))
		return
	}
	h.submit(c, game.Command{Kind: game.InputStart, Mode: req.Mode})
}

// Roll 掷骰
// @Summary 人类玩家掷骰
// @Tags Game
// @Produce json
// @Param wait query bool false "等待执行完成并返回快照"
// @Success 202 {object} AcceptedResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/game/roll [post]
func (h *GameHandler) Roll(c *gin.Context) {
	h.submit(c, game.Command{Kind: game.InputRoll})
}

// Answer 回答当前题目
// @Summary 回答数学题
// @Tags Game
// @Accept json
// @Produce json
// @Param request body AnswerRequest true "所选选项"
// @Success 202 {object} AcceptedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/game/answer [post]
func (h *GameHandler) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrInvalidParam))
		return
	}
	h.submit(c, game.Command{Kind: game.InputAnswer, Option: req.Option})
}

// Decision 确认或放弃升级
// @Summary 升级确认
// @Tags Game
// @Accept json
// @Produce json
// @Param request body DecisionRequest true "是否升级"
// @Success 202 {object} AcceptedResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/game/decision [post]
func (h *GameHandler) Decision(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrInvalidParam))
		return
	}
	h.submit(c, game.Command{Kind: game.InputDecision, Accept: *req.Accept})
}

// Practice 练习题
// @Summary 按错题分布出一道练习题（含答案）
// @Tags Practice
// @Produce json
// @Param type query string false "ADD / SUB / MUL / DIV"
// @Success 200 {object} models.Question
// @Router /api/v1/practice [get]
func (h *GameHandler) Practice(c *gin.Context) {
	q, err := h.runner.Engine().Practice(c.Request.Context(), models.OpKind(c.Query("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// Mistakes 错题本
// @Summary 错题列表和统计
// @Tags Practice
// @Produce json
// @Param game_id query string false "对局ID"
// @Param type query string false "运算类型"
// @Param limit query int false "条数"
// @Success 200 {object} MistakesResponse
// @Router /api/v1/mistakes [get]
func (h *GameHandler) Mistakes(c *gin.Context) {
	q := archive.Query{
		GameID: c.Query("game_id"),
		Op:     models.OpKind(c.Query("type")),
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondError(c, errors.Newf(errors.ErrInvalidParam, "limit=%s", s))
			return
		}
		q.Limit = n
	}

	ctx := c.Request.Context()
	records, err := h.archive.List(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.archive.Summary(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MistakesResponse{Records: records, Summary: summary})
}

// submit 入队；wait=true 时等待执行完成并返回最新快照
func (h *GameHandler) submit(c *gin.Context, cmd game.Command) {
	if c.Query("wait") == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), waitTimeout)
		defer cancel()
		if err := h.runner.Do(ctx, cmd); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.runner.Engine().Snapshot())
		return
	}

	if err := h.runner.Submit(cmd); err != nil {
		respondError(c, err)
		return
	}
	h.logger.Debug("指令已入队", zap.String("kind", string(cmd.Kind)))
	c.JSON(http.StatusAccepted, AcceptedResponse{
		Accepted: true,
		Kind:     cmd.Kind,
		Version:  h.runner.Engine().Snapshot().Version,
	})
}

// respondError 按错误码返回HTTP状态
func respondError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrUnknown)
	}
	resp := *appErr
	resp.Stack = nil
	c.JSON(appErr.HTTPStatus(), errors.NewErrorResponse(&resp))
}
