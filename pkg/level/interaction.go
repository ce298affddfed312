package level

import (
	"errors"

	"github.com/gonewx/lawnwars/pkg/character"
	"github.com/gonewx/lawnwars/pkg/fsm"
	"github.com/gonewx/lawnwars/pkg/geom"
)

// 交互模式状态名
const (
	ModeNormal    = "normal"
	ModePlanting  = "planting"
	ModeShoveling = "shoveling"
)

var (
	// ErrNoPendingPlant 进入种植模式时未携带待种植物
	ErrNoPendingPlant = errors.New("interaction: no pending plant")
	// ErrModeBusy 当前模式下不允许切换到目标模式
	ErrModeBusy = errors.New("interaction: mode transition not allowed")
)

// Interaction 玩家交互状态
//
// normal、planting、shoveling 三态互斥，种植和铲除只能从 normal
// 进入、回到 normal。种植模式持有待种植物和跟随指针的预览锚点。
type Interaction struct {
	machine *fsm.StateMachine

	pending    *character.Plant
	previewPos geom.Vec
}

// NewInteraction 创建交互状态机，初始为 normal
func NewInteraction() *Interaction {
	it := &Interaction{}
	m := fsm.NewStateMachine()
	m.AddState(fsm.NewState(ModeNormal), ModePlanting, ModeShoveling)
	m.AddState(fsm.NewState(ModePlanting), ModeNormal)
	m.AddState(fsm.NewState(ModeShoveling), ModeNormal)
	if err := m.SetInitialState(ModeNormal); err != nil {
		// 状态图在此函数内完整构造，初始状态必然存在
		panic(err)
	}
	it.machine = m
	return it
}

// Mode 返回当前交互模式
func (it *Interaction) Mode() string { return it.machine.State() }

// IsPlanting 返回是否处于种植模式
func (it *Interaction) IsPlanting() bool { return it.Mode() == ModePlanting }

// IsShoveling 返回是否处于铲除模式
func (it *Interaction) IsShoveling() bool { return it.Mode() == ModeShoveling }

// StartPlanting 携带待种植物进入种植模式
//
// plant 为 nil 或当前不在 normal 模式时失败。
func (it *Interaction) StartPlanting(plant *character.Plant, pointer geom.Vec) error {
	if plant == nil {
		return ErrNoPendingPlant
	}
	if !it.machine.TransitionTo(ModePlanting) {
		return ErrModeBusy
	}
	it.pending = plant
	it.previewPos = pointer
	return nil
}

// StopPlanting 退出种植模式并丢弃待种植物
func (it *Interaction) StopPlanting() {
	if it.machine.TransitionTo(ModeNormal) {
		it.pending = nil
	}
}

// TakePendingPlant 取走待种植物并退出种植模式
//
// 放置成功时调用；返回被取走的植物。
func (it *Interaction) TakePendingPlant() *character.Plant {
	p := it.pending
	it.StopPlanting()
	return p
}

// PendingPlant 返回待种植物，不改变模式
func (it *Interaction) PendingPlant() *character.Plant { return it.pending }

// StartShoveling 进入铲除模式
func (it *Interaction) StartShoveling() error {
	if !it.machine.TransitionTo(ModeShoveling) {
		return ErrModeBusy
	}
	return nil
}

// StopShoveling 退出铲除模式
func (it *Interaction) StopShoveling() {
	it.machine.TransitionTo(ModeNormal)
}

// MovePreview 更新预览锚点位置，仅种植模式下生效
func (it *Interaction) MovePreview(pos geom.Vec) {
	if it.IsPlanting() {
		it.previewPos = pos
	}
}

// PreviewPos 返回预览锚点位置
func (it *Interaction) PreviewPos() geom.Vec { return it.previewPos }
