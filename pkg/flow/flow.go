// Package flow 提供关卡脚本化流程的协作式步骤调度
//
// 一个流程由若干可挂起的步骤（FlowPart）顺序组成，控制器每帧由外界
// 喂入时间增量驱动当前步骤推进。同一时刻最多只有一个步骤在执行，
// 没有任何并行；这是单线程协作式调度，必须每帧调用一次 Update。
//
// 原型中的步骤用生成器挂起实现，这里改为显式的可恢复 Step 对象：
// 步骤被激活时先以 dt=0 预热一次，之后每次 Update 以当帧 dt 恢复，
// Resume 返回 true 表示步骤完成。
package flow

import "log"

// Step 一次流程步骤的可恢复执行体
//
// Resume 每帧最多被调用一次，返回 true 表示步骤完成。
type Step interface {
	// Resume 以时间增量推进步骤，返回步骤是否完成
	Resume(dt float64) bool
}

// Part 流程结点：构造一个新的 Step 执行体
//
// Part 在步骤被激活的瞬间调用，与原型中"调用生成器函数"对应。
type Part func() Step

// stepFunc 将函数适配为 Step
type stepFunc func(dt float64) bool

func (f stepFunc) Resume(dt float64) bool { return f(dt) }

// Func 将逐帧函数包装成 Part，fn 返回 true 表示完成
func Func(fn func(dt float64) bool) Part {
	return func() Step { return stepFunc(fn) }
}

// Wait 构造等待指定毫秒数的 Part
func Wait(duration float64) Part {
	return func() Step {
		timer := 0.0
		return stepFunc(func(dt float64) bool {
			timer += dt
			return timer >= duration
		})
	}
}

// Do 构造立即执行 fn 并完成的 Part，不占用帧
func Do(fn func()) Part {
	return func() Step {
		return stepFunc(func(dt float64) bool {
			fn()
			return true
		})
	}
}

// Controller 流程控制器
//
// 持有 Part 有序列表和当前步骤，流程执行期间可动态追加新 Part。
// 再次调用 Start 会放弃正在执行的步骤（隐式取消），从头开始。
type Controller struct {
	parts   []Part
	index   int
	current Step
	running bool
	paused  bool
}

// NewController 创建空流程控制器
func NewController() *Controller {
	return &Controller{paused: true}
}

// AddPart 追加一个流程结点，流程执行期间也可调用
func (c *Controller) AddPart(part Part) {
	c.parts = append(c.parts, part)
}

// Start 从第一个结点开始执行流程
//
// 列表为空时启动失败，仅记录日志，控制器保持非运行状态。
// 步骤完成时立即推进到下一结点，连续推进所有零挂起步骤。
func (c *Controller) Start() {
	if len(c.parts) == 0 {
		log.Printf("[FlowController] start failed: no flow parts")
		c.ResetFlow()
		return
	}
	c.index = 0
	c.running = true
	c.paused = false
	c.activate()
}

// activate 激活 parts[index]，并连续跳过所有立即完成的步骤
func (c *Controller) activate() {
	for c.index < len(c.parts) {
		c.current = c.parts[c.index]()
		// 预热：与原型中首次 send(None) 对应
		if !c.current.Resume(0) {
			return
		}
		c.index++
	}
	// 所有步骤执行完毕
	c.current = nil
	c.running = false
	c.paused = true
}

// Update 推进当前步骤
//
// 未运行、无当前步骤或已暂停时不做任何事。dt 为自上次更新以来
// 经过的毫秒数，会传入当前步骤的 Resume。
func (c *Controller) Update(dt float64) {
	if !c.running || c.current == nil || c.paused {
		return
	}
	if c.current.Resume(dt) {
		// 当前步骤完成，进入下一步
		c.index++
		c.activate()
	}
}

// Pause 暂停流程；仅在运行中有效，不丢弃当前步骤的内部进度
func (c *Controller) Pause() {
	if !c.running {
		return
	}
	c.paused = true
}

// Resume 恢复流程执行；仅在运行中有效
func (c *Controller) Resume() {
	if !c.running {
		return
	}
	c.paused = false
}

// IsPaused 返回流程当前是否处于暂停状态
func (c *Controller) IsPaused() bool {
	return c.running && c.paused
}

// IsRunning 返回流程是否正在执行
func (c *Controller) IsRunning() bool {
	return c.running
}

// ResetFlow 重置流程至初始状态，保留已添加的 Part
func (c *Controller) ResetFlow() {
	c.index = 0
	c.current = nil
	c.running = false
	c.paused = true
}

// ClearFlow 清除所有 Part
func (c *Controller) ClearFlow() {
	c.parts = nil
}

// ResetAndClear 重置流程并清除所有 Part（关卡销毁时调用）
func (c *Controller) ResetAndClear() {
	c.ResetFlow()
	c.ClearFlow()
}
