package game

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wfunc/math-tycoon/internal/errors"
)

// Phase 回合阶段
type Phase string

const (
	PhaseIdle             Phase = "idle"              // 未开局
	PhaseAwaitingRoll     Phase = "awaiting_roll"     // 等待掷骰
	PhaseMoving           Phase = "moving"            // 移动中
	PhaseResolving        Phase = "resolving"         // 结算格子
	PhaseAwaitingDecision Phase = "awaiting_decision" // 等待确认升级
	PhaseAwaitingAnswer   Phase = "awaiting_answer"   // 等待答题
	PhaseGameOver         Phase = "game_over"         // 对局结束
)

// 状态机事件
const (
	EventStart    = "start"
	EventRoll     = "roll"
	EventLand     = "land"
	EventAsk      = "ask"
	EventOffer    = "offer"
	EventDecide   = "decide"
	EventAnswer   = "answer"
	EventEndTurn  = "end_turn"
	EventGameOver = "game_over"
)

// Transition 状态转换定义
type Transition struct {
	From  Phase
	Event string
	To    Phase
}

// Machine 回合状态机
type Machine struct {
	mu          sync.RWMutex
	current     Phase
	transitions map[string]Transition

	onTransition func(from, to Phase, event string)
}

// NewMachine 创建状态机，初始阶段为idle
func NewMachine() *Machine {
	m := &Machine{
		current:     PhaseIdle,
		transitions: make(map[string]Transition),
	}
	m.initTransitions()
	return m
}

// initTransitions 初始化状态转换规则
func (m *Machine) initTransitions() {
	// 开局
	m.add(PhaseIdle, EventStart, PhaseAwaitingRoll)

	// 掷骰后移动；被关在休息站的人类玩家先答题；跳过破产或休息的玩家
	m.add(PhaseAwaitingRoll, EventRoll, PhaseMoving)
	m.add(PhaseAwaitingRoll, EventAsk, PhaseAwaitingAnswer)
	m.add(PhaseAwaitingRoll, EventEndTurn, PhaseAwaitingRoll)

	// 经过起点先答题领工资，否则直接结算落点
	m.add(PhaseMoving, EventAsk, PhaseAwaitingAnswer)
	m.add(PhaseMoving, EventLand, PhaseResolving)

	m.add(PhaseResolving, EventAsk, PhaseAwaitingAnswer)
	m.add(PhaseResolving, EventOffer, PhaseAwaitingDecision)
	m.add(PhaseResolving, EventEndTurn, PhaseAwaitingRoll)
	// 答对出狱后立即掷骰
	m.add(PhaseResolving, EventRoll, PhaseMoving)

	m.add(PhaseAwaitingDecision, EventDecide, PhaseResolving)
	m.add(PhaseAwaitingAnswer, EventAnswer, PhaseResolving)

	// 任何进行中的阶段 -> 对局结束
	for _, p := range []Phase{PhaseAwaitingRoll, PhaseMoving, PhaseResolving, PhaseAwaitingDecision, PhaseAwaitingAnswer} {
		m.add(p, EventGameOver, PhaseGameOver)
	}
}

func (m *Machine) add(from Phase, event string, to Phase) {
	m.transitions[transitionKey(from, event)] = Transition{From: from, Event: event, To: to}
}

func transitionKey(p Phase, event string) string {
	return fmt.Sprintf("%s:%s", p, event)
}

// Trigger 触发事件，无效转换返回ErrInvalidTransition且阶段不变
func (m *Machine) Trigger(event string) error {
	m.mu.Lock()
	t, ok := m.transitions[transitionKey(m.current, event)]
	if !ok {
		from, valid := m.current, m.validEvents()
		m.mu.Unlock()
		return errors.Newf(errors.ErrInvalidTransition, "阶段=%s, 事件=%s, 可用=%v", from, event, valid)
	}
	from := m.current
	m.current = t.To
	cb := m.onTransition
	m.mu.Unlock()

	if cb != nil {
		cb(from, t.To, event)
	}
	return nil
}

// Phase 当前阶段
func (m *Machine) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Can 当前阶段能否处理事件
func (m *Machine) Can(event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.transitions[transitionKey(m.current, event)]
	return ok
}

// validEvents 当前阶段的有效事件（已排序），调用方需持锁
func (m *Machine) validEvents() []string {
	events := []string{}
	for _, t := range m.transitions {
		if t.From == m.current {
			events = append(events, t.Event)
		}
	}
	sort.Strings(events)
	return events
}

// OnTransition 设置阶段变更回调
func (m *Machine) OnTransition(fn func(from, to Phase, event string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransition = fn
}
