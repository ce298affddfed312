package game

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/gonewx/lawnwars/pkg/geom"
)

// cameraTween 相机平移动画，X/Y 各一条补间曲线
type cameraTween struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera 世界坐标相机
//
// 只负责平移与脚本化的平滑移动，缩放与旋转不在玩法需要之内。
// 时间单位为毫秒，与模拟循环一致。
type Camera struct {
	pos   geom.Vec
	tween *cameraTween
}

// NewCamera 创建位于原点的相机
func NewCamera() *Camera {
	return &Camera{}
}

// Pos 返回相机世界坐标
func (c *Camera) Pos() geom.Vec { return c.pos }

// SetPos 立即移动相机，打断进行中的动画
func (c *Camera) SetPos(pos geom.Vec) {
	c.pos = pos
	c.tween = nil
}

// AnimateTo 平滑移动相机到目标位置
//
// durationMs 为动画时长（毫秒）。重复调用以新目标重启动画。
func (c *Camera) AnimateTo(target geom.Vec, durationMs float64) {
	d := float32(durationMs)
	c.tween = &cameraTween{
		tweenX: gween.New(float32(c.pos.X), float32(target.X), d, ease.InOutQuad),
		tweenY: gween.New(float32(c.pos.Y), float32(target.Y), d, ease.InOutQuad),
	}
}

// IsAnimating 返回相机是否有进行中的动画
func (c *Camera) IsAnimating() bool { return c.tween != nil }

// Update 推进相机动画一帧
func (c *Camera) Update(dt float64) {
	if c.tween == nil {
		return
	}
	if !c.tween.doneX {
		val, done := c.tween.tweenX.Update(float32(dt))
		c.pos.X = float64(val)
		c.tween.doneX = done
	}
	if !c.tween.doneY {
		val, done := c.tween.tweenY.Update(float32(dt))
		c.pos.Y = float64(val)
		c.tween.doneY = done
	}
	if c.tween.doneX && c.tween.doneY {
		c.tween = nil
	}
}
