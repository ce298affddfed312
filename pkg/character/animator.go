// Package character 提供植物与僵尸的运行时实体
//
// 实体组合 fsm 状态机和可选的能力组件（射击、定时动作、爆炸），
// 能力在构造期由数据驱动的工厂装配，不使用继承层级。动画播放是
// 外部协作者，实体只通过 Animator 接口驱动它。
package character

import "github.com/gonewx/lawnwars/pkg/config"

// Animator 动画播放组件的最小接口
//
// 实体在状态切换时调用 SetState，每帧调用 Update；Finished 对
// 一次性动画（如死亡）返回是否播完，循环动画恒返回 false。
type Animator interface {
	Update(dt float64)
	SetState(state string)
	State() string
	Finished() bool
}

// NopAnimator 空动画组件，用于测试和无渲染环境
type NopAnimator struct {
	state string
	// FinishAfter 大于零时，当前状态累计播放该毫秒数后视为播完
	FinishAfter float64

	elapsed float64
}

// Update 推进动画时间
func (a *NopAnimator) Update(dt float64) {
	a.elapsed += dt
}

// SetState 切换动画状态并重置播放进度
func (a *NopAnimator) SetState(state string) {
	a.state = state
	a.elapsed = 0
}

// State 返回当前动画状态
func (a *NopAnimator) State() string { return a.state }

// Finished 返回一次性动画是否播完
func (a *NopAnimator) Finished() bool {
	return a.FinishAfter > 0 && a.elapsed >= a.FinishAfter
}

// defaultOnceClipDuration 无渲染时 once 类型动画的名义时长（毫秒）
const defaultOnceClipDuration = 500.0

// ClipAnimator 基于配置片段类型的动画组件
//
// 渲染协作者未接入时（无头模式和默认引导）由它提供完成语义：
// type 为 once 的状态在名义时长后视为播完，loop 状态永不播完。
// 攻击回冷却、死亡渐隐等依赖 Finished 的状态流转由此保持推进。
type ClipAnimator struct {
	// OnceDuration once 状态的名义播放时长，零值取缺省值
	OnceDuration float64

	once    map[string]struct{}
	state   string
	elapsed float64
}

// NewClipAnimator 按角色配置的动画表构造动画组件
func NewClipAnimator(animations map[string][]config.AnimationClip) *ClipAnimator {
	once := make(map[string]struct{})
	for state, clips := range animations {
		for _, clip := range clips {
			if clip.Type == "once" {
				once[state] = struct{}{}
				break
			}
		}
	}
	return &ClipAnimator{once: once}
}

// Update 推进动画时间
func (a *ClipAnimator) Update(dt float64) {
	a.elapsed += dt
}

// SetState 切换动画状态并重置播放进度
func (a *ClipAnimator) SetState(state string) {
	a.state = state
	a.elapsed = 0
}

// State 返回当前动画状态
func (a *ClipAnimator) State() string { return a.state }

// Finished 返回一次性动画是否播完
func (a *ClipAnimator) Finished() bool {
	if _, ok := a.once[a.state]; !ok {
		return false
	}
	d := a.OnceDuration
	if d <= 0 {
		d = defaultOnceClipDuration
	}
	return a.elapsed >= d
}
