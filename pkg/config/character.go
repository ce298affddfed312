// Package config 提供角色与关卡的配置加载
//
// 所有配置文件为 YAML 格式，在关卡加载期一次性读入；模拟期间配置
// 只读。解析失败、缺少必填字段均为加载期致命错误，中止关卡构造。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CharacterConfig 角色配置的公共接口
type CharacterConfig interface {
	ConfigID() string
}

// AnimationClip 一个状态下的一段动画配置
//
// 动画播放本身由外部协作者负责，这里只保留查找所需的字段。
type AnimationClip struct {
	Name string `yaml:"name"` // 动画片段名（资源键）
	Type string `yaml:"type"` // 播放类型："loop" 或 "once"
}

// ZombieConfig 僵尸配置
type ZombieConfig struct {
	ID            string                     `yaml:"id"`
	MinHealth     float64                    `yaml:"minHealth"`
	MaxHealth     float64                    `yaml:"maxHealth"`
	Speed         float64                    `yaml:"speed"`         // 像素/秒
	AnchorOffsetY float64                    `yaml:"anchorOffsetY"` // 行对齐用的垂直锚点偏移
	InitState     string                     `yaml:"initState"`     // 初始状态，缺省为 animations 的首个状态
	Animations    map[string][]AnimationClip `yaml:"animations"`    // 状态名 -> 动画列表

	// 有序的状态名列表，保证 InitState 缺省值确定
	stateOrder []string
}

// ConfigID 返回配置 id
func (c *ZombieConfig) ConfigID() string { return c.ID }

// States 返回配置中出现的状态名（按文件顺序）
func (c *ZombieConfig) States() []string { return c.stateOrder }

// UnmarshalYAML 自定义解析以保留 animations 的键顺序
func (c *ZombieConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawZombieConfig ZombieConfig
	raw := (*rawZombieConfig)(c)
	if err := value.Decode(raw); err != nil {
		return err
	}
	// 在节点树中按出现顺序收集 animations 的状态键
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value != "animations" {
			continue
		}
		anims := value.Content[i+1]
		for j := 0; j+1 < len(anims.Content); j += 2 {
			c.stateOrder = append(c.stateOrder, anims.Content[j].Value)
		}
	}
	return nil
}

// validate 校验僵尸配置的必填字段
func (c *ZombieConfig) validate() error {
	if c.ID == "" {
		return fmt.Errorf("zombie config: id is required")
	}
	if len(c.Animations) == 0 {
		return fmt.Errorf("zombie config %s: animations are required", c.ID)
	}
	for state, clips := range c.Animations {
		if len(clips) == 0 {
			return fmt.Errorf("zombie config %s: state %q has empty animation list", c.ID, state)
		}
	}
	if c.MinHealth <= 0 || c.MaxHealth <= 0 {
		return fmt.Errorf("zombie config %s: health range is required", c.ID)
	}
	if c.MinHealth > c.MaxHealth {
		return fmt.Errorf("zombie config %s: minHealth %.1f exceeds maxHealth %.1f", c.ID, c.MinHealth, c.MaxHealth)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("zombie config %s: speed is required", c.ID)
	}
	if c.InitState == "" {
		if len(c.stateOrder) == 0 {
			return fmt.Errorf("zombie config %s: cannot derive initial state", c.ID)
		}
		c.InitState = c.stateOrder[0]
	}
	if _, ok := c.Animations[c.InitState]; !ok {
		return fmt.Errorf("zombie config %s: initial state %q has no animations", c.ID, c.InitState)
	}
	return nil
}

// PlantConfig 植物配置
type PlantConfig struct {
	ID             string                     `yaml:"id"`
	Health         float64                    `yaml:"health"`
	Cost           int                        `yaml:"cost"`           // 种植消耗阳光
	Damage         float64                    `yaml:"damage"`         // 单次攻击伤害
	AttackInterval float64                    `yaml:"attackInterval"` // 攻击间隔（毫秒）
	Range          float64                    `yaml:"range"`          // 攻击射程（像素）
	ZLayer         int                        `yaml:"zLayer"`         // 同格绘制层级
	Consumable     bool                       `yaml:"consumable"`     // 一次性植物（使用后消耗）
	Animations     map[string][]AnimationClip `yaml:"animations"`
}

// ConfigID 返回配置 id
func (c *PlantConfig) ConfigID() string { return c.ID }

// validate 校验植物配置的必填字段
func (c *PlantConfig) validate() error {
	if c.ID == "" {
		return fmt.Errorf("plant config: id is required")
	}
	if c.Health <= 0 {
		return fmt.Errorf("plant config %s: health is required", c.ID)
	}
	for state, clips := range c.Animations {
		if len(clips) == 0 {
			return fmt.Errorf("plant config %s: state %q has empty animation list", c.ID, state)
		}
	}
	return nil
}

// parseZombieConfig 解析僵尸配置数据
func parseZombieConfig(data []byte) (*ZombieConfig, error) {
	var cfg ZombieConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse zombie config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parsePlantConfig 解析植物配置数据
func parsePlantConfig(data []byte) (*PlantConfig, error) {
	var cfg PlantConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse plant config YAML: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readFile 读取配置文件内容
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return data, nil
}
