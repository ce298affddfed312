// Package geom 提供二维向量和矩形的基础运算
//
// 核心模拟层不依赖渲染引擎，坐标运算统一使用本包的世界坐标类型。
package geom

import "math"

// Vec 二维向量（世界坐标，单位：像素）
type Vec struct {
	X, Y float64
}

// Add 返回 v + o
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

// Sub 返回 v - o
func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

// Scale 返回 v 的 k 倍
func (v Vec) Scale(k float64) Vec {
	return Vec{v.X * k, v.Y * k}
}

// Len 返回向量长度
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized 返回同方向的单位向量；零向量返回零向量
func (v Vec) Normalized() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Rect 轴对齐矩形，(X, Y) 为左上角
type Rect struct {
	X, Y, W, H float64
}

// RectAround 以 center 为中心、size 为宽高构造矩形
func RectAround(center Vec, size Vec) Rect {
	return Rect{
		X: center.X - size.X/2,
		Y: center.Y - size.Y/2,
		W: size.X,
		H: size.Y,
	}
}

// Contains 判断点 p 是否落在矩形内（含左/上边界，不含右/下边界）
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Offset 返回平移后的矩形
func (r Rect) Offset(d Vec) Rect {
	return Rect{r.X + d.X, r.Y + d.Y, r.W, r.H}
}

// Center 返回矩形中心点
func (r Rect) Center() Vec {
	return Vec{r.X + r.W/2, r.Y + r.H/2}
}
