// Package game 实现回合编排：掷骰、移动、格子结算、数学关卡和回合推进。
package game

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/math-tycoon/internal/board"
	"github.com/wfunc/math-tycoon/internal/config"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/ledger"
	"github.com/wfunc/math-tycoon/internal/logger"
	"github.com/wfunc/math-tycoon/internal/models"
	"github.com/wfunc/math-tycoon/internal/question"
	"github.com/wfunc/math-tycoon/internal/rng"
	"go.uber.org/zap"
)

// maxEffects 保留的视觉特效条数
const maxEffects = 10

// Options 引擎依赖
type Options struct {
	Board     *board.Board
	Rules     Rules
	Pacing    config.PacingConfig
	Source    rng.Source         // 骰子、机器人决策、运气卡抽取
	Provider  question.Provider  // 出题服务
	Formatter *question.Formatter
	Recorder  Recorder
	Pacer     Pacer
	Logger    *zap.Logger
}

// Engine 回合编排引擎
//
// 所有输入（开局、掷骰、答题、确认）在持锁状态下串行执行，一次推进到下一个
// 需要人类输入的位置。读取方通过Snapshot获取最近一次发布的只读副本。
type Engine struct {
	mu sync.Mutex

	board    *board.Board
	rules    Rules
	src      rng.Source
	provider question.Provider
	fmt      *question.Formatter
	recorder Recorder
	pacer    Pacer
	pacing   atomic.Pointer[config.PacingConfig]
	log      *zap.Logger

	state   *State
	ledger  *ledger.Ledger
	machine *Machine
	version uint64

	snapshot  atomic.Pointer[Snapshot]
	obsMu     sync.RWMutex
	observers map[int]func(*Snapshot)
	nextObs   int
}

// NewEngine 创建引擎
func NewEngine(opts Options) (*Engine, error) {
	if opts.Board == nil {
		b, err := board.Default()
		if err != nil {
			return nil, err
		}
		opts.Board = b
	}
	if err := opts.Board.Validate(); err != nil {
		return nil, err
	}
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if opts.Rules.DiceSides < 1 || opts.Rules.MaxLevel < 1 {
		return nil, errors.New(errors.ErrInvalidParam, "无效的对局规则")
	}
	// 一次掷骰最多经过起点一次
	if opts.Rules.DiceSides >= opts.Board.Size() {
		return nil, errors.Newf(errors.ErrInvalidParam, "骰子面数 %d 必须小于格子数 %d", opts.Rules.DiceSides, opts.Board.Size())
	}
	if opts.Source == nil {
		opts.Source = rng.Default()
	}
	if opts.Formatter == nil {
		opts.Formatter = question.NewFormatter("")
	}
	if opts.Provider == nil {
		opts.Provider = question.NewLocalGenerator(rng.Default(), opts.Formatter, 0)
	}
	if opts.Pacer == nil {
		opts.Pacer = TimerPacer{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.WithModule("game")
	}

	e := &Engine{
		board:     opts.Board,
		rules:     opts.Rules,
		src:       opts.Source,
		provider:  opts.Provider,
		fmt:       opts.Formatter,
		recorder:  opts.Recorder,
		pacer:     opts.Pacer,
		log:       opts.Logger,
		machine:   NewMachine(),
		observers: make(map[int]func(*Snapshot)),
	}
	pacing := opts.Pacing
	e.pacing.Store(&pacing)
	e.state = &State{
		Tiles:           opts.Board.CloneTiles(),
		Players:         []models.Player{},
		Badges:          models.DefaultBadges(),
		Mistakes:        make(map[models.OpKind]*models.MistakeRecord),
		UpgradingTileID: -1,
	}

	e.mu.Lock()
	e.publish()
	e.mu.Unlock()
	return e, nil
}

// SetPacing 更新表现性停顿时长（配置热更新）
func (e *Engine) SetPacing(p config.PacingConfig) {
	e.pacing.Store(&p)
}

func (e *Engine) pacingCfg() config.PacingConfig {
	return *e.pacing.Load()
}

// Board 棋盘定义
func (e *Engine) Board() *board.Board {
	return e.board
}

// StartMode 按预设模式开局
func (e *Engine) StartMode(ctx context.Context, mode Mode) error {
	players, err := Roster(mode, e.rules.InitialMoney)
	if err != nil {
		return err
	}
	return e.Start(ctx, mode, players)
}

// Start 以指定座次开新局，原有进度全部丢弃；错题统计和成就保留
func (e *Engine) Start(ctx context.Context, mode Mode, players []models.Player) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.publish()

	roster, primary, err := prepareRoster(players, e.board.Size(), e.rules.InitialMoney)
	if err != nil {
		return err
	}
	if mode == "" {
		mode = ModeCustom
	}

	prev := e.state
	e.state = &State{
		GameID:          uuid.NewString(),
		Mode:            mode,
		StartedAt:       time.Now(),
		Tiles:           e.board.CloneTiles(),
		Players:         roster,
		PrimaryID:       primary,
		Badges:          prev.Badges,
		Mistakes:        prev.Mistakes,
		UpgradingTileID: -1,
	}
	e.ledger = ledger.New(e.state.Players, e.state.Tiles)
	e.machine = NewMachine()
	e.machine.OnTransition(func(from, to Phase, event string) {
		e.log.Debug("阶段变更",
			zap.String("game_id", e.state.GameID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.String("event", event))
	})
	if err := e.machine.Trigger(EventStart); err != nil {
		return err
	}

	e.addLog("🎮 游戏开始！由你来掌管所有人的财务计算。", models.SeveritySuccess)
	logger.LogGameEvent("game_start", e.state.GameID, map[string]interface{}{
		"mode":    string(mode),
		"players": len(roster),
	})
	return e.pump(ctx)
}

// RequestRoll 人类玩家掷骰；被关在休息站时先出出狱题
func (e *Engine) RequestRoll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.publish()

	if err := inputError(e.machine.Phase(), e.state.ActivePlayer(), InputRoll); err != nil {
		return err
	}
	p := e.state.ActivePlayer()
	if p.Jailed {
		return e.askJail(ctx, p)
	}
	if err := e.roll(ctx); err != nil {
		return err
	}
	return e.pump(ctx)
}

// SubmitAnswer 回答当前数学关卡
func (e *Engine) SubmitAnswer(ctx context.Context, option int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.publish()

	if err := inputError(e.machine.Phase(), e.state.ActivePlayer(), InputAnswer); err != nil {
		return err
	}
	g := e.state.Gate
	if g == nil || g.Question == nil {
		return errors.New(errors.ErrNoPendingQuestion)
	}
	if !g.Question.HasOption(option) {
		return errors.Newf(errors.ErrInvalidOption, "%d", option)
	}

	correct := g.Question.IsCorrect(option)
	e.state.Gate = nil
	if err := e.machine.Trigger(EventAnswer); err != nil {
		return err
	}
	e.score(ctx, g, option, correct)

	if err := e.settle(ctx, g, correct); err != nil {
		return err
	}
	return e.pump(ctx)
}

// Decide 确认或放弃升级
func (e *Engine) Decide(ctx context.Context, accept bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.publish()

	if err := inputError(e.machine.Phase(), e.state.ActivePlayer(), InputDecision); err != nil {
		return err
	}
	d := e.state.Decision
	e.state.Decision = nil
	if err := e.machine.Trigger(EventDecide); err != nil {
		return err
	}

	if !accept {
		e.addLog("保留资金，不升级。", models.SeverityInfo)
		if err := e.endTurn(); err != nil {
			return err
		}
		return e.pump(ctx)
	}

	p := e.state.Player(d.PlayerID)
	tile := &e.state.Tiles[d.TileID]
	if err := e.askUpgrade(ctx, p, tile, d.Cost); err != nil {
		return err
	}
	return e.pump(ctx)
}

// Execute 执行一条输入指令
func (e *Engine) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case InputStart:
		return e.StartMode(ctx, cmd.Mode)
	case InputRoll:
		return e.RequestRoll(ctx)
	case InputAnswer:
		return e.SubmitAnswer(ctx, cmd.Option)
	case InputDecision:
		return e.Decide(ctx, cmd.Accept)
	}
	return errors.Newf(errors.ErrInvalidParam, "未知指令: %s", cmd.Kind)
}

// Practice 练习题：按错题分布（或指定运算）出题，不影响对局
func (e *Engine) Practice(ctx context.Context, op models.OpKind) (*models.Question, error) {
	if op != "" && !op.Valid() {
		return nil, errors.Newf(errors.ErrInvalidParam, "未知运算: %s", op)
	}
	q, err := e.provider.Generate(ctx, question.Request{
		Mistakes: e.Snapshot().MistakeCounts(),
		Op:       op,
	})
	if err != nil {
		return nil, err
	}
	if err := question.Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

// pump 自动推进破产玩家和机器人的回合，直到需要人类输入或对局结束
func (e *Engine) pump(ctx context.Context) error {
	for e.machine.Phase() == PhaseAwaitingRoll {
		p := e.state.ActivePlayer()
		switch {
		case p.Bankrupt:
			if err := e.pause(ctx, e.pacingCfg().BankruptSkip); err != nil {
				return err
			}
			if err := e.endTurn(); err != nil {
				return err
			}

		case p.Automated:
			if err := e.pause(ctx, e.pacingCfg().AIThinking); err != nil {
				return err
			}
			if p.Jailed {
				p.Jailed = false
				e.addLog(fmt.Sprintf("%s 在休息站，跳过一回合。", p.Name), models.SeverityWarning)
				if err := e.endTurn(); err != nil {
					return err
				}
				continue
			}
			if err := e.roll(ctx); err != nil {
				return err
			}

		default:
			return nil
		}
	}
	return nil
}

// roll 掷骰并移动；点数在动画之前一次性确定
func (e *Engine) roll(ctx context.Context) error {
	if err := e.machine.Trigger(EventRoll); err != nil {
		return err
	}
	p := e.state.ActivePlayer()
	steps := e.src.IntN(e.rules.DiceSides) + 1
	e.state.Dice = steps
	e.state.UpgradingTileID = -1

	if err := e.pause(ctx, e.pacingCfg().DiceRoll); err != nil {
		return err
	}
	e.addLog(fmt.Sprintf("%s 掷出了 %d 点！", p.Name, steps), models.SeverityInfo)
	return e.move(ctx, p, steps)
}

// move 逐格移动，每次掷骰最多触发一次经过起点
func (e *Engine) move(ctx context.Context, p *models.Player, steps int) error {
	size := len(e.state.Tiles)
	passedStart := false
	for i := 0; i < steps; i++ {
		p.Position++
		if p.Position >= size {
			p.Position = 0
			passedStart = true
		}
		if err := e.pause(ctx, e.pacingCfg().Step); err != nil {
			return err
		}
	}

	if passedStart && e.rules.StartBonus > 0 {
		bonus := e.rules.StartBonus
		return e.openGate(ctx, &Gate{
			Effect:   EffectStartBonus,
			PlayerID: p.ID,
			TileID:   p.Position,
			Amount:   bonus,
			Gain:     true,
		}, question.Override{
			Scenario: fmt.Sprintf("%s 经过起点，获得工资奖励！", p.Name),
			Base:     p.Money,
			Delta:    bonus,
			Op:       models.OpAdd,
		})
	}

	if err := e.machine.Trigger(EventLand); err != nil {
		return err
	}
	if err := e.pause(ctx, e.pacingCfg().Settle); err != nil {
		return err
	}
	return e.resolveTile(ctx)
}

// endTurn 结束当前回合：对局已决出胜者时进入结束阶段，否则轮到下一位未破产玩家
func (e *Engine) endTurn() error {
	if winnerID, ended := e.ledger.Winner(); ended {
		return e.finish(winnerID)
	}
	if err := e.machine.Trigger(EventEndTurn); err != nil {
		return err
	}
	e.state.Active = NextActive(e.state.Players, e.state.Active)
	return nil
}

// finish 宣布获胜者
func (e *Engine) finish(winnerID string) error {
	// 已结束的对局不再重复宣布
	if !e.machine.Can(EventGameOver) {
		return nil
	}
	if err := e.machine.Trigger(EventGameOver); err != nil {
		return err
	}
	e.state.WinnerID = winnerID
	name := winnerID
	if w := e.state.Player(winnerID); w != nil {
		name = w.Name
	}
	e.addLog(fmt.Sprintf("🏆 游戏结束！最终获胜者是 %s！", name), models.SeveritySuccess)
	logger.LogGameEvent("game_over", e.state.GameID, map[string]interface{}{
		"winner":   winnerID,
		"duration": time.Since(e.state.StartedAt).String(),
	})
	return nil
}

// pause 发布当前状态后做表现性停顿，ctx取消视为拆除
func (e *Engine) pause(ctx context.Context, d time.Duration) error {
	e.publish()
	if err := e.pacer.Pause(ctx, d); err != nil {
		return errors.Wrap(err, errors.ErrCanceled, "回合被中断")
	}
	return nil
}

func (e *Engine) addLog(msg string, sev models.Severity) {
	e.state.Log = append(e.state.Log, models.LogEntry{Message: msg, Severity: sev})
	e.log.Debug(msg, zap.String("game_id", e.state.GameID), zap.String("severity", string(sev)))
}

func (e *Engine) addEffect(pos int, text string, kind models.EffectKind) {
	e.state.effectSeq++
	e.state.Effects = append(e.state.Effects, models.VisualEffect{
		ID:       e.state.effectSeq,
		Position: pos,
		Text:     text,
		Kind:     kind,
	})
	if n := len(e.state.Effects); n > maxEffects {
		e.state.Effects = append([]models.VisualEffect(nil), e.state.Effects[n-maxEffects:]...)
	}
}
