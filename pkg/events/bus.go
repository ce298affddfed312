// Package events 提供游戏内的事件总线
//
// 总线是输入、UI 与玩法逻辑之间唯一的通信通道：原始输入每帧只在
// 外壳层翻译成领域事件一次，之后所有玩法反应都通过订阅完成，模拟
// 层不直接轮询输入。
//
// 支持：
//   - 优先级（高优先级先收到事件，UI 优先级恒为 100）
//   - 一次性订阅
//   - 事件种类链派发（订阅父种类的处理器也会收到子种类事件）
//
// 总线不是单例，由启动流程构造后注入各场景和实体，测试可以构造
// 相互隔离的总线。单线程协作式模型，所有调用必须发生在模拟主循环
// 所在的 goroutine 上。
package events

import "reflect"

// Kind 事件种类标识
type Kind string

// Event 事件接口
//
// Kinds 返回事件的种类链，最具体的种类在前，不包含抽象基类。
// Handled 标志在派发过程中一旦置真，剩余处理器（包括父种类的）不再执行。
type Event interface {
	Kinds() []Kind
	Handled() bool
	MarkHandled()
}

// Base 事件公共字段，领域事件内嵌该类型获得 handled 标志
type Base struct {
	handled bool
}

// Handled 返回事件是否已被处理
func (b *Base) Handled() bool { return b.handled }

// MarkHandled 标记事件已被处理，终止后续派发
func (b *Base) MarkHandled() { b.handled = true }

// Handler 事件处理函数
type Handler func(Event)

// UIPriority UI 处理器的固定优先级，恒先于默认优先级 0 的玩法处理器
const UIPriority = 100

// Subscription 一条订阅记录
type Subscription struct {
	Handler  Handler
	Priority int
	Once     bool
}

// Bus 事件总线
//
// 每个种类的订阅列表按优先级降序排列，同优先级按订阅先后保持稳定。
type Bus struct {
	subscribers map[Kind][]*Subscription
}

// NewBus 创建空事件总线
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Kind][]*Subscription)}
}

// Subscribe 订阅指定种类的事件
//
// 新订阅插入到第一个优先级严格更低的记录之前，保证降序稳定。
// once 为 true 时处理器触发一次后自动移除。
func (b *Bus) Subscribe(kind Kind, handler Handler, priority int, once bool) *Subscription {
	sub := &Subscription{Handler: handler, Priority: priority, Once: once}
	subs := b.subscribers[kind]
	index := len(subs)
	for i, s := range subs {
		if s.Priority < priority {
			index = i
			break
		}
	}
	subs = append(subs, nil)
	copy(subs[index+1:], subs[index:])
	subs[index] = sub
	b.subscribers[kind] = subs
	return sub
}

// SubscribeUI 以 UI 优先级订阅，UI 处理器先于玩法处理器观察事件
func (b *Bus) SubscribeUI(kind Kind, handler Handler, once bool) *Subscription {
	return b.Subscribe(kind, handler, UIPriority, once)
}

// Unsubscribe 按订阅对象精确取消订阅
func (b *Bus) Unsubscribe(kind Kind, sub *Subscription) {
	b.remove(kind, sub)
}

// UnsubscribeHandler 移除指定种类下所有绑定同一处理函数的订阅
func (b *Bus) UnsubscribeHandler(kind Kind, handler Handler) {
	target := reflect.ValueOf(handler).Pointer()
	subs := b.subscribers[kind]
	kept := subs[:0]
	for _, s := range subs {
		if reflect.ValueOf(s.Handler).Pointer() != target {
			kept = append(kept, s)
		}
	}
	b.subscribers[kind] = kept
}

// Publish 派发事件
//
// 按事件种类链从最具体到最宽泛依次派发；每个种类遍历订阅列表的
// 快照副本，处理器可以在回调内安全地订阅/退订。事件被标记 handled
// 后整条链立即停止。没有订阅者时是空操作。
//
// 处理器内的 panic 不被吞掉，向上传播。
func (b *Bus) Publish(event Event) {
	for _, kind := range event.Kinds() {
		if event.Handled() {
			break
		}
		subs := b.subscribers[kind]
		if len(subs) == 0 {
			continue
		}
		snapshot := make([]*Subscription, len(subs))
		copy(snapshot, subs)

		for _, sub := range snapshot {
			if event.Handled() {
				break
			}
			sub.Handler(event)
			if sub.Once {
				b.remove(kind, sub)
			}
		}
	}
}

// remove 从订阅表中删除指定记录，记录不存在时静默忽略
func (b *Bus) remove(kind Kind, sub *Subscription) {
	subs := b.subscribers[kind]
	for i, s := range subs {
		if s == sub {
			b.subscribers[kind] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
