package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CellConfig 单元格布局配置
type CellConfig struct {
	Row              int     `yaml:"row"`
	Column           int     `yaml:"column"`
	X                float64 `yaml:"x"` // 单元格中心世界坐标
	Y                float64 `yaml:"y"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Type             string  `yaml:"type"` // 单元格类型："ground", "water"
	HighlightOffsetX float64 `yaml:"highlightOffsetX"`
	HighlightOffsetY float64 `yaml:"highlightOffsetY"`
}

// LevelConfig 关卡配置
//
// 背景与资源由外部协作者加载，这里只保留路径；波次时间线在独立的
// JSON 文件中（稳定数据格式，见 level 包）。
type LevelConfig struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	Background string       `yaml:"background"` // 背景图路径
	Timeline   string       `yaml:"timeline"`   // 波次时间线 JSON 路径（相对配置文件目录）
	Rows       int          `yaml:"rows"`
	Columns    int          `yaml:"columns"`
	Cells      []CellConfig `yaml:"cells"`

	// SpawnMargin 僵尸入场点相对行尾单元格的水平距离（像素）
	SpawnMargin float64 `yaml:"spawnMargin"`
}

// LoadLevelConfig 从 YAML 文件加载关卡配置
func LoadLevelConfig(path string) (*LevelConfig, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLevelConfig(data)
}

// ParseLevelConfig 解析关卡配置数据
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var cfg LevelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}
	applyLevelDefaults(&cfg)
	if err := validateLevelConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid level config: %w", err)
	}
	return &cfg, nil
}

// applyLevelDefaults 为缺省字段设置默认值
func applyLevelDefaults(cfg *LevelConfig) {
	if cfg.SpawnMargin == 0 {
		cfg.SpawnMargin = 100
	}
	if cfg.Timeline == "" {
		cfg.Timeline = "timeline.json"
	}
	for i := range cfg.Cells {
		if cfg.Cells[i].Type == "" {
			cfg.Cells[i].Type = "ground"
		}
	}
}

// validateLevelConfig 校验关卡配置的完整性
func validateLevelConfig(cfg *LevelConfig) error {
	if cfg.ID == "" {
		return fmt.Errorf("level ID is required")
	}
	if cfg.Rows <= 0 || cfg.Columns <= 0 {
		return fmt.Errorf("level %s: rows and columns must be positive", cfg.ID)
	}
	if len(cfg.Cells) == 0 {
		return fmt.Errorf("level %s: cells are required", cfg.ID)
	}
	seen := make(map[[2]int]bool, len(cfg.Cells))
	for _, cell := range cfg.Cells {
		if cell.Row < 0 || cell.Row >= cfg.Rows || cell.Column < 0 || cell.Column >= cfg.Columns {
			return fmt.Errorf("level %s: cell (%d,%d) outside %dx%d grid",
				cfg.ID, cell.Row, cell.Column, cfg.Rows, cfg.Columns)
		}
		key := [2]int{cell.Row, cell.Column}
		if seen[key] {
			return fmt.Errorf("level %s: duplicate cell (%d,%d)", cfg.ID, cell.Row, cell.Column)
		}
		seen[key] = true
		if cell.Width <= 0 || cell.Height <= 0 {
			return fmt.Errorf("level %s: cell (%d,%d) has non-positive size", cfg.ID, cell.Row, cell.Column)
		}
	}
	return nil
}
