package app

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gonewx/lawnwars/pkg/events"
	"github.com/gonewx/lawnwars/pkg/geom"
)

// InputTranslator 每帧轮询输入设备并转换为领域事件
//
// 统一处理鼠标和触摸输入，优先检测触摸（移动设备）。转换出的事件
// 经事件总线分发，UI 订阅者可以在玩法订阅者之前拦截。
type InputTranslator struct {
	bus     *events.Bus
	lastPos geom.Vec
}

// NewInputTranslator 创建输入转换器
func NewInputTranslator(bus *events.Bus) *InputTranslator {
	return &InputTranslator{bus: bus}
}

// Poll 轮询一帧输入，每个 tick 调用一次
func (t *InputTranslator) Poll() {
	pos, pressed := pointerState()

	if pos != t.lastPos {
		ev := &events.MouseMotionEvent{LastPos: t.lastPos}
		ev.Pos = pos
		t.bus.Publish(ev)
		t.lastPos = pos
	}

	if pressed {
		ev := &events.ClickEvent{}
		ev.Pos = pos
		t.bus.Publish(ev)
	}

	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		t.bus.Publish(&events.KeyDownEvent{Key: int(key)})
	}
}

// pointerState 返回当前指针位置与是否刚刚按下
func pointerState() (geom.Vec, bool) {
	// 首先检查触摸输入
	if touchIDs := inpututil.AppendJustPressedTouchIDs(nil); len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return geom.Vec{X: float64(x), Y: float64(y)}, true
	}
	if touchIDs := ebiten.AppendTouchIDs(nil); len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return geom.Vec{X: float64(x), Y: float64(y)}, false
	}

	// 其次检查鼠标输入
	x, y := ebiten.CursorPosition()
	pos := geom.Vec{X: float64(x), Y: float64(y)}
	return pos, inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}
