// Package grid 提供种植网格及其占用规则
//
// 网格是单元格的二维矩阵。构造时校验每行单元格中心 x 严格递增，
// 这是行内寻路二分查找依赖的前置条件，违反时构造失败。
//
// 单元格持有一个占用植物栈，同格的多个植物通过 z 层值区分绘制
// 顺序；栈中"最先加入"的植物在部分消耗型植物流程中被特殊对待。
package grid

import (
	"fmt"

	"github.com/gonewx/lawnwars/pkg/geom"
	"github.com/gonewx/lawnwars/pkg/lane"
)

// Occupant 单元格占用者（植物实体）
//
// ZLayer 决定同格植物的绘制层级，铲除时移除 z 层最高的占用者。
type Occupant interface {
	ZLayer() int
}

// Cell 网格单元格
type Cell struct {
	Row, Col int
	Center   geom.Vec
	Size     geom.Vec
	Type     string
	// HighlightOffset 高亮遮罩相对单元格矩形的偏移，命中测试时一并考虑
	HighlightOffset geom.Vec

	Highlighted bool
	plants      []Occupant
}

// Bounds 返回用于命中测试的矩形（含高亮遮罩偏移）
func (c *Cell) Bounds() geom.Rect {
	return geom.RectAround(c.Center, c.Size).Offset(c.HighlightOffset)
}

// Place 将植物压入占用栈
func (c *Cell) Place(o Occupant) {
	c.plants = append(c.plants, o)
}

// RemoveTopmost 移除并返回 z 层最高的占用者，空栈返回 nil
//
// z 层相同时移除后加入的那个。
func (c *Cell) RemoveTopmost() Occupant {
	if len(c.plants) == 0 {
		return nil
	}
	top := 0
	for i, p := range c.plants {
		if p.ZLayer() >= c.plants[top].ZLayer() {
			top = i
		}
	}
	removed := c.plants[top]
	c.plants = append(c.plants[:top], c.plants[top+1:]...)
	return removed
}

// Remove 从占用栈中移除指定占用者，不存在时返回 false
func (c *Cell) Remove(o Occupant) bool {
	for i, p := range c.plants {
		if p == o {
			c.plants = append(c.plants[:i], c.plants[i+1:]...)
			return true
		}
	}
	return false
}

// First 返回最先加入的占用者，空栈返回 nil
func (c *Cell) First() Occupant {
	if len(c.plants) == 0 {
		return nil
	}
	return c.plants[0]
}

// Occupants 返回占用栈的副本
func (c *Cell) Occupants() []Occupant {
	out := make([]Occupant, len(c.plants))
	copy(out, c.plants)
	return out
}

// IsEmpty 返回占用栈是否为空
func (c *Cell) IsEmpty() bool {
	return len(c.plants) == 0
}

// Grid 种植网格
type Grid struct {
	cells   [][]*Cell
	rows    int
	cols    int
	lanes   []*lane.Lane
	hovered *Cell

	// selecting 为真时指针移动会做单元格命中测试并高亮行列
	selecting bool
}

// NewGrid 由单元格矩阵构造网格
//
// 矩阵必须非空且每行中心 x 严格递增。每行同时构造行内寻路用的
// Lane，校验失败即网格构造失败（致命配置错误）。
func NewGrid(cells [][]*Cell) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("grid: empty cell matrix")
	}
	g := &Grid{
		cells: cells,
		rows:  len(cells),
		cols:  len(cells[0]),
		lanes: make([]*lane.Lane, len(cells)),
	}
	for r, row := range cells {
		centers := make([]geom.Vec, 0, len(row))
		for _, cell := range row {
			if cell == nil {
				continue
			}
			centers = append(centers, cell.Center)
		}
		l, err := lane.NewLane(centers)
		if err != nil {
			return nil, fmt.Errorf("grid: row %d invalid: %w", r, err)
		}
		g.lanes[r] = l
	}
	return g, nil
}

// Rows 返回行数
func (g *Grid) Rows() int { return g.rows }

// Cols 返回列数
func (g *Grid) Cols() int { return g.cols }

// Cell 返回指定单元格，越界返回 nil
func (g *Grid) Cell(row, col int) *Cell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return nil
	}
	return g.cells[row][col]
}

// Row 返回指定行的单元格序列
func (g *Grid) Row(row int) []*Cell {
	if row < 0 || row >= g.rows {
		return nil
	}
	return g.cells[row]
}

// Lane 返回指定行的寻路行，越界返回 nil
func (g *Grid) Lane(row int) *lane.Lane {
	if row < 0 || row >= g.rows {
		return nil
	}
	return g.lanes[row]
}

// StartSelecting 进入选择状态，指针移动开始驱动高亮
func (g *Grid) StartSelecting() {
	g.selecting = true
}

// StopSelecting 退出选择状态并清除所有高亮
func (g *Grid) StopSelecting() {
	g.selecting = false
	g.hovered = nil
	g.clearHighlight()
}

// IsSelecting 返回网格是否处于选择状态
func (g *Grid) IsSelecting() bool { return g.selecting }

// HoveredCell 返回当前悬停的单元格，无悬停时返回 nil
func (g *Grid) HoveredCell() *Cell { return g.hovered }

// OnPointerMove 处理指针移动
//
// 仅在选择状态下有效：对每个单元格的命中矩形做检测，命中后高亮该
// 单元格所在的整行和整列（种植对齐提示），未命中则清除全部高亮。
func (g *Grid) OnPointerMove(worldPos geom.Vec) *Cell {
	if !g.selecting {
		return nil
	}
	g.clearHighlight()
	g.hovered = nil
	for _, row := range g.cells {
		for _, cell := range row {
			if cell == nil || !cell.Bounds().Contains(worldPos) {
				continue
			}
			g.hovered = cell
			g.highlightRowAndCol(cell.Row, cell.Col)
			return cell
		}
	}
	return nil
}

func (g *Grid) clearHighlight() {
	for _, row := range g.cells {
		for _, cell := range row {
			if cell != nil {
				cell.Highlighted = false
			}
		}
	}
}

func (g *Grid) highlightRowAndCol(row, col int) {
	for _, cell := range g.cells[row] {
		if cell != nil {
			cell.Highlighted = true
		}
	}
	for r := 0; r < g.rows; r++ {
		if cell := g.cells[r][col]; cell != nil {
			cell.Highlighted = true
		}
	}
}
