package game

import (
	"time"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

// InputKind 渲染端可以发回的输入
type InputKind string

const (
	InputStart    InputKind = "start"
	InputRoll     InputKind = "roll"
	InputAnswer   InputKind = "answer"
	InputDecision InputKind = "decision"
)

var allInputs = []InputKind{InputStart, InputRoll, InputAnswer, InputDecision}

// Command 输入指令
type Command struct {
	Kind   InputKind `json:"kind"`
	Mode   Mode      `json:"mode,omitempty"`
	Option int       `json:"option,omitempty"`
	Accept bool      `json:"accept,omitempty"`
}

// PendingQuestion 展示给渲染端的题目（不含答案）
type PendingQuestion struct {
	GateID     string        `json:"gate_id"`
	PlayerID   string        `json:"player_id"`
	Effect     Effect        `json:"effect"`
	Prompt     string        `json:"question"`
	Options    []int         `json:"options"`
	Op         models.OpKind `json:"type"`
	Difficulty int           `json:"difficulty"`
	Attempt    int           `json:"attempt"`
}

// Snapshot 对局只读快照
type Snapshot struct {
	GameID          string                 `json:"game_id"`
	Version         uint64                 `json:"version"`
	Mode            Mode                   `json:"mode,omitempty"`
	Phase           Phase                  `json:"phase"`
	BoardName       string                 `json:"board_name"`
	Tiles           []models.Tile          `json:"board"`
	Players         []models.Player        `json:"players"`
	ActivePlayerID  string                 `json:"active_player_id"`
	PrimaryPlayerID string                 `json:"primary_player_id"`
	Log             []models.LogEntry      `json:"logs"`
	Question        *PendingQuestion       `json:"question,omitempty"`
	Decision        *Decision              `json:"decision,omitempty"`
	Dice            int                    `json:"dice"`
	Streak          int                    `json:"streak"`
	Badges          []models.Badge         `json:"badges"`
	Mistakes        []models.MistakeRecord `json:"mistakes"`
	Effects         []models.VisualEffect  `json:"effects"`
	UpgradingTileID *int                   `json:"upgrading_tile_id,omitempty"`
	WinnerID        string                 `json:"winner_id,omitempty"`
	ValidInputs     []InputKind            `json:"valid_inputs"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ActivePlayer 当前行动的玩家
func (s *Snapshot) ActivePlayer() *models.Player {
	for i := range s.Players {
		if s.Players[i].ID == s.ActivePlayerID {
			return &s.Players[i]
		}
	}
	return nil
}

// MistakeCounts 按运算类型统计的错题数
func (s *Snapshot) MistakeCounts() map[models.OpKind]int {
	counts := make(map[models.OpKind]int, len(s.Mistakes))
	for _, m := range s.Mistakes {
		counts[m.Op] = m.Count
	}
	return counts
}

// Check 按快照预校验输入，通过校验的指令才会进入队列
func (s *Snapshot) Check(cmd Command) error {
	if cmd.Kind == InputStart && !cmd.Mode.Valid() {
		return errors.Newf(errors.ErrInvalidParam, "未知模式: %s", cmd.Mode)
	}
	if err := inputError(s.Phase, s.ActivePlayer(), cmd.Kind); err != nil {
		return err
	}
	if cmd.Kind == InputAnswer && s.Question != nil {
		for _, o := range s.Question.Options {
			if o == cmd.Option {
				return nil
			}
		}
		return errors.Newf(errors.ErrInvalidOption, "%d", cmd.Option)
	}
	return nil
}

// inputError 当前阶段是否接受该输入
func inputError(phase Phase, active *models.Player, kind InputKind) error {
	switch kind {
	case InputStart:
		return nil
	case InputRoll, InputAnswer, InputDecision:
	default:
		return errors.Newf(errors.ErrInvalidParam, "未知输入: %s", kind)
	}

	switch phase {
	case PhaseIdle:
		return errors.New(errors.ErrGameNotStarted)
	case PhaseGameOver:
		return errors.New(errors.ErrGameOver)
	}

	switch kind {
	case InputRoll:
		switch phase {
		case PhaseAwaitingAnswer, PhaseAwaitingDecision:
			return errors.New(errors.ErrGatePending)
		case PhaseAwaitingRoll:
		default:
			return errors.Newf(errors.ErrInvalidTransition, "阶段=%s", phase)
		}
		if active == nil || active.Automated || active.Bankrupt {
			return errors.New(errors.ErrNotYourTurn)
		}
	case InputAnswer:
		if phase != PhaseAwaitingAnswer {
			return errors.New(errors.ErrNoPendingQuestion)
		}
	case InputDecision:
		if phase != PhaseAwaitingDecision {
			return errors.New(errors.ErrNoPendingDecision)
		}
	}
	return nil
}

// Snapshot 最近一次发布的快照，调用方不得修改
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Subscribe 订阅快照发布，回调在引擎锁内同步执行，不得阻塞或回调引擎
func (e *Engine) Subscribe(fn func(*Snapshot)) (cancel func()) {
	e.obsMu.Lock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	e.obsMu.Unlock()

	return func() {
		e.obsMu.Lock()
		delete(e.observers, id)
		e.obsMu.Unlock()
	}
}

// publish 复制当前状态并通知订阅者，调用方需持有e.mu
func (e *Engine) publish() {
	e.checkBadges()
	e.version++
	snap := e.build()
	e.snapshot.Store(snap)

	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	for _, fn := range e.observers {
		fn(snap)
	}
}

func (e *Engine) build() *Snapshot {
	s := e.state
	snap := &Snapshot{
		GameID:          s.GameID,
		Version:         e.version,
		Mode:            s.Mode,
		Phase:           e.machine.Phase(),
		BoardName:       e.board.Name,
		Tiles:           make([]models.Tile, len(s.Tiles)),
		Players:         make([]models.Player, len(s.Players)),
		PrimaryPlayerID: s.PrimaryID,
		Log:             sharedLog(s.Log),
		Dice:            s.Dice,
		Streak:          s.Streak,
		Badges:          append([]models.Badge{}, s.Badges...),
		Mistakes:        []models.MistakeRecord{},
		Effects:         append([]models.VisualEffect{}, s.Effects...),
		WinnerID:        s.WinnerID,
		UpdatedAt:       time.Now(),
	}
	for i, t := range s.Tiles {
		snap.Tiles[i] = t.Clone()
	}
	for i, p := range s.Players {
		snap.Players[i] = p.Clone()
	}
	if a := s.ActivePlayer(); a != nil {
		snap.ActivePlayerID = a.ID
	}
	for _, op := range models.AllOps {
		if m, ok := s.Mistakes[op]; ok {
			snap.Mistakes = append(snap.Mistakes, *m)
		}
	}
	if s.UpgradingTileID >= 0 {
		id := s.UpgradingTileID
		snap.UpgradingTileID = &id
	}
	if g := s.Gate; g != nil && g.Question != nil {
		snap.Question = &PendingQuestion{
			GateID:     g.ID,
			PlayerID:   g.PlayerID,
			Effect:     g.Effect,
			Prompt:     g.Question.Prompt,
			Options:    append([]int{}, g.Question.Options...),
			Op:         g.Question.Op,
			Difficulty: g.Question.Difficulty,
			Attempt:    g.Attempt,
		}
	}
	if d := s.Decision; d != nil {
		dc := *d
		snap.Decision = &dc
	}

	snap.ValidInputs = []InputKind{}
	active := snap.ActivePlayer()
	for _, kind := range allInputs {
		if inputError(snap.Phase, active, kind) == nil {
			snap.ValidInputs = append(snap.ValidInputs, kind)
		}
	}
	return snap
}

// sharedLog 日志只追加不修改，快照直接共享已写入的部分；
// 截断容量后引擎的后续追加不会影响已发布的快照
func sharedLog(log []models.LogEntry) []models.LogEntry {
	if log == nil {
		return []models.LogEntry{}
	}
	return log[:len(log):len(log)]
}
