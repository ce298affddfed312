package events

import "github.com/gonewx/lawnwars/pkg/geom"

// 事件种类表
//
// 种类链建模原始事件层次：订阅 KindMouse 的处理器会收到
// Click/Hover/MouseMotion 等全部鼠标事件。
const (
	// UI 事件
	KindUI          Kind = "ui"
	KindButtonClick Kind = "ui.button_click"

	// 输入事件
	KindMouse       Kind = "mouse"
	KindClick       Kind = "mouse.click"
	KindMouseMotion Kind = "mouse.motion"
	KindHover       Kind = "mouse.hover"
	KindKeyDown     Kind = "key_down"

	// 玩法事件
	KindStartPlant        Kind = "plant.start"
	KindStopPlant         Kind = "plant.stop"
	KindStartShoveling    Kind = "shovel.start"
	KindEndShoveling      Kind = "shovel.end"
	KindWillSpawnZombie   Kind = "zombie.will_spawn"
	KindSunCollect        Kind = "sun.collect"
	KindStartFight        Kind = "level.start_fight"
	KindNextLevel         Kind = "level.next"
	KindCardStartCooldown Kind = "card.cooldown_start"
	KindCardEndCooldown   Kind = "card.cooldown_end"
)

// ButtonClickEvent UI 按钮点击事件，ObjectID 标识被点击的控件
type ButtonClickEvent struct {
	Base
	ObjectID string
}

func (*ButtonClickEvent) Kinds() []Kind { return []Kind{KindButtonClick, KindUI} }

// MouseEvent 鼠标事件公共部分，Pos 为屏幕坐标
type MouseEvent struct {
	Base
	Pos geom.Vec
}

// WorldPos 根据相机位置换算事件发生处的世界坐标
func (e *MouseEvent) WorldPos(cameraPos geom.Vec) geom.Vec {
	return e.Pos.Add(cameraPos)
}

// ClickEvent 鼠标按下事件
type ClickEvent struct {
	MouseEvent
}

func (*ClickEvent) Kinds() []Kind { return []Kind{KindClick, KindMouse} }

// MouseMotionEvent 鼠标移动事件，LastPos 为上一帧位置
type MouseMotionEvent struct {
	MouseEvent
	LastPos geom.Vec
}

func (*MouseMotionEvent) Kinds() []Kind { return []Kind{KindMouseMotion, KindMouse} }

// HoverEvent 鼠标悬停事件，Target 为悬停目标
type HoverEvent struct {
	MouseEvent
	Target any
}

func (*HoverEvent) Kinds() []Kind { return []Kind{KindHover, KindMouse} }

// KeyDownEvent 键盘按下事件
type KeyDownEvent struct {
	Base
	Key int
}

func (*KeyDownEvent) Kinds() []Kind { return []Kind{KindKeyDown} }

// StartPlantEvent 开始种植事件，Plant 为待种植的植物对象
type StartPlantEvent struct {
	Base
	Plant any
}

func (*StartPlantEvent) Kinds() []Kind { return []Kind{KindStartPlant} }

// StopPlantEvent 结束种植事件
//
// 触发后不应再从交互状态中获取植物对象。
type StopPlantEvent struct {
	Base
	Plant any
	Row   int
	Col   int
}

func (*StopPlantEvent) Kinds() []Kind { return []Kind{KindStopPlant} }

// StartShovelingEvent 开始铲除事件
type StartShovelingEvent struct {
	Base
}

func (*StartShovelingEvent) Kinds() []Kind { return []Kind{KindStartShoveling} }

// EndShovelingEvent 结束铲除事件
type EndShovelingEvent struct {
	Base
}

func (*EndShovelingEvent) Kinds() []Kind { return []Kind{KindEndShoveling} }

// WillSpawnZombieEvent 即将生成僵尸事件
type WillSpawnZombieEvent struct {
	Base
	Zombie any
	Row    int
}

func (*WillSpawnZombieEvent) Kinds() []Kind { return []Kind{KindWillSpawnZombie} }

// SunCollectEvent 收集阳光事件
type SunCollectEvent struct {
	Base
	Amount int
}

func (*SunCollectEvent) Kinds() []Kind { return []Kind{KindSunCollect} }

// StartFightEvent 战斗正式开始事件（出战植物选择完成后触发）
type StartFightEvent struct {
	Base
}

func (*StartFightEvent) Kinds() []Kind { return []Kind{KindStartFight} }

// NextLevelEvent 切换到下一关事件
type NextLevelEvent struct {
	Base
	LevelID string
}

func (*NextLevelEvent) Kinds() []Kind { return []Kind{KindNextLevel} }

// CardStartCooldownEvent 植物卡片开始冷却
type CardStartCooldownEvent struct {
	Base
	CardID string
}

func (*CardStartCooldownEvent) Kinds() []Kind { return []Kind{KindCardStartCooldown} }

// CardEndCooldownEvent 植物卡片冷却结束
type CardEndCooldownEvent struct {
	Base
	CardID string
}

func (*CardEndCooldownEvent) Kinds() []Kind { return []Kind{KindCardEndCooldown} }
