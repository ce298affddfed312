// Package fsm 提供通用的命名状态机
//
// 状态机由一组命名状态和每个状态的合法出边集合构成，仅在显式调用
// TransitionTo 时发生状态切换，没有任何隐式定时器。所有有状态实体
// （植物、僵尸、关卡、交互模式）都通过组合本状态机实现自己的状态图。
package fsm

import (
	"fmt"
	"log"
)

// State 状态机中的一个命名状态
//
// OnEnter/OnExit 回调在状态切换时触发，可为 nil。
// 状态一经注册视为不可变，外部仅允许绑定回调。
type State struct {
	Name    string
	OnEnter func(*State)
	OnExit  func(*State)
}

// NewState 创建没有回调的状态
func NewState(name string) *State {
	return &State{Name: name}
}

// ErrUnknownState 表示引用了未注册的状态
var ErrUnknownState = fmt.Errorf("fsm: unknown state")

// StateMachine 命名状态图
//
// transitions 记录每个状态允许跳转到的目标状态名集合，
// 只有目标在集合内时 TransitionTo 才会成功。
type StateMachine struct {
	states      map[string]*State
	transitions map[string]map[string]struct{}
	current     *State
}

// NewStateMachine 创建空状态机
func NewStateMachine() *StateMachine {
	return &StateMachine{
		states:      make(map[string]*State),
		transitions: make(map[string]map[string]struct{}),
	}
}

// AddState 注册状态及其允许的出边集合
//
// 重复注册同名状态会覆盖旧的状态和出边。
func (m *StateMachine) AddState(state *State, allowed ...string) {
	m.states[state.Name] = state
	targets := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		targets[name] = struct{}{}
	}
	m.transitions[state.Name] = targets
}

// SetTransitionsOf 重置指定状态的出边集合
func (m *StateMachine) SetTransitionsOf(stateName string, allowed ...string) {
	targets := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		targets[name] = struct{}{}
	}
	m.transitions[stateName] = targets
}

// AddTransitionsOf 在指定状态的出边集合上追加目标
//
// 追加结果会写回出边表，已存在的目标保持不变。
func (m *StateMachine) AddTransitionsOf(stateName string, allowed ...string) {
	targets := m.transitions[stateName]
	if targets == nil {
		targets = make(map[string]struct{}, len(allowed))
	}
	for _, name := range allowed {
		targets[name] = struct{}{}
	}
	m.transitions[stateName] = targets
}

// SetInitialState 设置初始状态并触发其 OnEnter
//
// 状态未注册时返回 ErrUnknownState。
func (m *StateMachine) SetInitialState(stateName string) error {
	state, ok := m.states[stateName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, stateName)
	}
	m.current = state
	if state.OnEnter != nil {
		state.OnEnter(state)
	}
	return nil
}

// CanTransitionTo 判断当前状态能否跳转到目标状态
//
// 没有当前状态、目标不在当前状态的出边集合中，或目标状态从未用
// AddState 注册（出边表允许悬空引用）时均返回 false。
func (m *StateMachine) CanTransitionTo(targetName string) bool {
	if m.current == nil {
		return false
	}
	if _, ok := m.states[targetName]; !ok {
		return false
	}
	_, ok := m.transitions[m.current.Name][targetName]
	return ok
}

// TransitionTo 尝试跳转到目标状态
//
// 非法跳转仅记录日志并返回 false，状态机保持原状态，不会中断模拟。
// 合法跳转依次触发旧状态 OnExit、切换当前状态、触发新状态 OnEnter。
func (m *StateMachine) TransitionTo(targetName string) bool {
	if !m.CanTransitionTo(targetName) {
		current := "<nil>"
		if m.current != nil {
			current = m.current.Name
		}
		log.Printf("[StateMachine] invalid transition: %s -> %s", current, targetName)
		return false
	}

	oldState := m.current
	newState := m.states[targetName]

	if oldState.OnExit != nil {
		oldState.OnExit(oldState)
	}
	m.current = newState
	if newState.OnEnter != nil {
		newState.OnEnter(newState)
	}
	return true
}

// State 返回当前状态名，未初始化时返回空串
func (m *StateMachine) State() string {
	if m.current == nil {
		return ""
	}
	return m.current.Name
}

// Current 返回当前状态对象，未初始化时返回 nil
func (m *StateMachine) Current() *State {
	return m.current
}
