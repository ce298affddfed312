// Package lane 提供僵尸的行内寻路
//
// 僵尸只沿所在行移动，不做自由二维寻路。寻路器在行内按中心 x 升序
// 排列的单元格上二分查找僵尸所在的区间，朝行进方向上的下一个单元格
// 输出单位方向向量；僵尸尚未对齐行中心线时对水平分量做阻尼，使其
// 以平滑的斜线漂移回中心线而不是瞬间竖直贴靠。
package lane

import (
	"fmt"

	"github.com/gonewx/lawnwars/pkg/geom"
)

const (
	// alignTolerance 水平/垂直对齐判定容差（像素）
	alignTolerance = 10.0
	// horizontalDamping 未对齐中心线时水平分量的阻尼系数
	horizontalDamping = 0.1
)

var (
	// ErrZeroDirection 僵尸水平方向分量为零，属于致命配置错误
	ErrZeroDirection = fmt.Errorf("lane: zombie direction has zero horizontal component")
	// ErrNoBracket 无法定位僵尸所在区间，说明网格构造不变量被破坏
	ErrNoBracket = fmt.Errorf("lane: cannot bracket position")
	// ErrEmptyLane 行内没有任何单元格
	ErrEmptyLane = fmt.Errorf("lane: no cells")
	// ErrUnorderedCells 行内单元格中心 x 坐标不是严格递增
	ErrUnorderedCells = fmt.Errorf("lane: cell centers must be strictly increasing in x")
)

// Lane 一行可寻路的单元格中心序列
type Lane struct {
	centers []geom.Vec
}

// NewLane 由单元格中心序列构造行
//
// 序列必须非空且 x 坐标严格递增，违反时返回错误（构造期致命）。
func NewLane(centers []geom.Vec) (*Lane, error) {
	if len(centers) == 0 {
		return nil, ErrEmptyLane
	}
	for i := 1; i < len(centers); i++ {
		if centers[i].X <= centers[i-1].X {
			return nil, fmt.Errorf("%w: cell %d (x=%.1f) after cell %d (x=%.1f)",
				ErrUnorderedCells, i, centers[i].X, i-1, centers[i-1].X)
		}
	}
	lane := &Lane{centers: make([]geom.Vec, len(centers))}
	copy(lane.centers, centers)
	return lane, nil
}

// Cells 返回单元格中心序列的副本
func (l *Lane) Cells() []geom.Vec {
	out := make([]geom.Vec, len(l.centers))
	copy(out, l.centers)
	return out
}

// bracket 二分查找包围 x 的相邻单元格对 (left, right)
//
// 返回的下标满足 centers[left].x <= x <= centers[right].x。
// 越过行两端时返回哨兵对：行首之前为 (-1, 0)，行尾之后为 (n-1, n)。
// x 恰好命中某个单元格中心时按行进方向决定归属：向右取 (mid, mid+1)，
// 向左取 (mid-1, mid)。
func (l *Lane) bracket(x float64, movingRight bool) (int, int, error) {
	n := len(l.centers)
	if x < l.centers[0].X {
		return -1, 0, nil
	}
	if x > l.centers[n-1].X {
		return n - 1, n, nil
	}

	lo, hi := 0, n-1
	for lo <= hi {
		mid := (lo + hi) / 2
		cx := l.centers[mid].X
		switch {
		case x == cx:
			if movingRight {
				return mid, mid + 1, nil
			}
			return mid - 1, mid, nil
		case x < cx:
			hi = mid - 1
		default:
			lo = mid + 1
		}
	}
	// 循环结束时 hi+1 == lo 且 centers[hi].x < x < centers[lo].x
	if hi >= 0 && lo < n && lo == hi+1 && l.centers[hi].X < x && x < l.centers[lo].X {
		return hi, lo, nil
	}
	return 0, 0, ErrNoBracket
}

// FindDirection 计算僵尸当前帧的单位移动方向
//
// offsetCenter 为僵尸的偏移中心（碰撞中心加每类僵尸的垂直锚点偏移），
// dir 为僵尸已锁定的行进方向，其水平分量不能为零。
//
// 越过行两端后不再有目标单元格，直接返回纯水平单位方向继续离场。
// 定位失败返回 ErrNoBracket，调用方应视为该僵尸的致命错误。
func (l *Lane) FindDirection(offsetCenter geom.Vec, dir geom.Vec) (geom.Vec, error) {
	if dir.X == 0 {
		return geom.Vec{}, ErrZeroDirection
	}
	movingRight := dir.X > 0
	horizontal := geom.Vec{X: -1}
	if movingRight {
		horizontal = geom.Vec{X: 1}
	}

	left, right, err := l.bracket(offsetCenter.X, movingRight)
	if err != nil {
		return geom.Vec{}, err
	}
	// 越过行两端：没有可瞄准的路径点，沿锁定方向继续
	if left < 0 || right >= len(l.centers) {
		return horizontal, nil
	}

	// 选取行进方向上的下一个目标单元格
	var targetIndex int
	if movingRight {
		targetIndex = right
		if abs(offsetCenter.X-l.centers[right].X) <= alignTolerance {
			targetIndex = right + 1
		}
	} else {
		targetIndex = left
		if abs(offsetCenter.X-l.centers[left].X) <= alignTolerance {
			targetIndex = left - 1
		}
	}
	// 目标落在行外：已到最后一个路径点，无需再对齐
	if targetIndex < 0 || targetIndex >= len(l.centers) {
		return horizontal, nil
	}

	target := l.centers[targetIndex]
	direction := target.Sub(offsetCenter).Normalized()
	// 尚未对齐目标行中心线时压低水平分量，产生平滑的斜线漂移
	if abs(offsetCenter.Y-target.Y) > alignTolerance {
		direction.X *= horizontalDamping
		direction = direction.Normalized()
	}
	return direction, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
