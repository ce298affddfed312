package fsm

import (
	"errors"
	"testing"
)

// buildTestMachine 构建简单的三状态测试状态机: a -> b -> c
func buildTestMachine() *StateMachine {
	m := NewStateMachine()
	m.AddState(NewState("a"), "b")
	m.AddState(NewState("b"), "c")
	m.AddState(NewState("c"))
	return m
}

// TestSetInitialState_Unknown 测试初始状态未注册时返回错误
func TestSetInitialState_Unknown(t *testing.T) {
	m := buildTestMachine()
	err := m.SetInitialState("missing")
	if !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
	if m.State() != "" {
		t.Errorf("state should stay empty, got %q", m.State())
	}
}

// TestSetInitialState_FiresOnEnter 测试设置初始状态触发 OnEnter
func TestSetInitialState_FiresOnEnter(t *testing.T) {
	m := NewStateMachine()
	entered := 0
	s := NewState("idle")
	s.OnEnter = func(*State) { entered++ }
	m.AddState(s)

	if err := m.SetInitialState("idle"); err != nil {
		t.Fatalf("SetInitialState failed: %v", err)
	}
	if entered != 1 {
		t.Errorf("OnEnter should fire exactly once, fired %d times", entered)
	}
	if m.State() != "idle" {
		t.Errorf("expected state idle, got %q", m.State())
	}
}

// TestTransitionTo_Illegal 测试非法跳转返回 false 且状态不变
func TestTransitionTo_Illegal(t *testing.T) {
	m := buildTestMachine()
	if err := m.SetInitialState("a"); err != nil {
		t.Fatal(err)
	}

	if m.TransitionTo("c") {
		t.Error("a -> c is not allowed, TransitionTo should return false")
	}
	if m.State() != "a" {
		t.Errorf("state should stay a after illegal transition, got %q", m.State())
	}
}

// TestTransitionTo_UnregisteredTarget 测试出边指向未注册状态时跳转非法（回归测试）
//
// AddTransitionsOf 允许追加尚未注册的目标名，这样的悬空出边不得
// 让 TransitionTo 崩溃，必须按普通非法跳转处理。
func TestTransitionTo_UnregisteredTarget(t *testing.T) {
	m := NewStateMachine()
	m.AddState(NewState("a"))
	m.AddTransitionsOf("a", "ghost")
	if err := m.SetInitialState("a"); err != nil {
		t.Fatal(err)
	}

	if m.CanTransitionTo("ghost") {
		t.Error("CanTransitionTo should be false for an unregistered target")
	}
	if m.TransitionTo("ghost") {
		t.Error("TransitionTo should fail for an unregistered target")
	}
	if m.State() != "a" {
		t.Errorf("state should stay a, got %q", m.State())
	}
}

// TestTransitionTo_BeforeInit 测试未初始化时任何跳转都非法
func TestTransitionTo_BeforeInit(t *testing.T) {
	m := buildTestMachine()
	if m.CanTransitionTo("a") {
		t.Error("CanTransitionTo should be false before initialization")
	}
	if m.TransitionTo("a") {
		t.Error("TransitionTo should fail before initialization")
	}
}

// TestTransitionTo_CallbackOrder 测试合法跳转时 OnExit/OnEnter 各触发一次且顺序正确
func TestTransitionTo_CallbackOrder(t *testing.T) {
	m := NewStateMachine()
	var calls []string
	walk := NewState("walk")
	walk.OnExit = func(*State) { calls = append(calls, "exit:walk") }
	attack := NewState("attack")
	attack.OnEnter = func(*State) { calls = append(calls, "enter:attack") }
	m.AddState(walk, "attack")
	m.AddState(attack)
	if err := m.SetInitialState("walk"); err != nil {
		t.Fatal(err)
	}

	if !m.TransitionTo("attack") {
		t.Fatal("walk -> attack should be legal")
	}
	if len(calls) != 2 || calls[0] != "exit:walk" || calls[1] != "enter:attack" {
		t.Errorf("unexpected callback sequence: %v", calls)
	}
	if m.State() != "attack" {
		t.Errorf("expected state attack, got %q", m.State())
	}
}

// TestAddTransitionsOf 测试追加出边会写回出边表（回归测试）
//
// 追加后原有目标与新目标都必须可达。
func TestAddTransitionsOf(t *testing.T) {
	m := NewStateMachine()
	m.AddState(NewState("attack"), "walk")
	m.AddState(NewState("walk"))
	m.AddState(NewState("attack_with_bucket"))
	if err := m.SetInitialState("attack"); err != nil {
		t.Fatal(err)
	}

	m.AddTransitionsOf("attack", "attack_with_bucket")

	if !m.CanTransitionTo("walk") {
		t.Error("existing target walk should survive AddTransitionsOf")
	}
	if !m.CanTransitionTo("attack_with_bucket") {
		t.Error("appended target attack_with_bucket should be reachable")
	}
}

// TestAddState_Overwrites 测试重复注册同名状态覆盖旧出边
func TestAddState_Overwrites(t *testing.T) {
	m := NewStateMachine()
	m.AddState(NewState("a"), "b")
	m.AddState(NewState("b"))
	m.AddState(NewState("a")) // 覆盖后无出边
	if err := m.SetInitialState("a"); err != nil {
		t.Fatal(err)
	}
	if m.CanTransitionTo("b") {
		t.Error("re-registering a state should overwrite its transitions")
	}
}
