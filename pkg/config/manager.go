package config

import (
	"fmt"
)

// ErrNotLoaded 表示请求的配置 id 从未被加载
var ErrNotLoaded = fmt.Errorf("config: not loaded")

// Kind 配置类型
type Kind string

const (
	KindZombie Kind = "zombie"
	KindPlant  Kind = "plant"
)

// Manager 配置管理器
//
// 显式构造并注入使用方（场景、工厂），不是全局单例。加载必须在
// 关卡构造期完成；模拟期间只读。重复加载同一 id 视为错误。
type Manager struct {
	configs map[string]CharacterConfig
}

// NewManager 创建空配置管理器
func NewManager() *Manager {
	return &Manager{configs: make(map[string]CharacterConfig)}
}

// Load 从文件加载一份角色配置
func (m *Manager) Load(kind Kind, path string) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return m.LoadData(kind, data)
}

// LoadData 从内存数据加载一份角色配置
func (m *Manager) LoadData(kind Kind, data []byte) error {
	var cfg CharacterConfig
	var err error
	switch kind {
	case KindZombie:
		cfg, err = parseZombieConfig(data)
	case KindPlant:
		cfg, err = parsePlantConfig(data)
	default:
		return fmt.Errorf("config: invalid kind %q", kind)
	}
	if err != nil {
		return err
	}
	if _, exists := m.configs[cfg.ConfigID()]; exists {
		return fmt.Errorf("config: %q loaded repeatedly", cfg.ConfigID())
	}
	m.configs[cfg.ConfigID()] = cfg
	return nil
}

// Exists 返回指定 id 的配置是否已加载
func (m *Manager) Exists(id string) bool {
	_, ok := m.configs[id]
	return ok
}

// Get 返回指定 id 的配置
//
// 未加载时返回带 id 的 ErrNotLoaded，调用方视为致命错误。
func (m *Manager) Get(id string) (CharacterConfig, error) {
	cfg, ok := m.configs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotLoaded, id)
	}
	return cfg, nil
}

// GetZombie 返回指定 id 的僵尸配置，类型不符时报错
func (m *Manager) GetZombie(id string) (*ZombieConfig, error) {
	cfg, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	zc, ok := cfg.(*ZombieConfig)
	if !ok {
		return nil, fmt.Errorf("config: %q is not a zombie config", id)
	}
	return zc, nil
}

// GetPlant 返回指定 id 的植物配置，类型不符时报错
func (m *Manager) GetPlant(id string) (*PlantConfig, error) {
	cfg, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	pc, ok := cfg.(*PlantConfig)
	if !ok {
		return nil, fmt.Errorf("config: %q is not a plant config", id)
	}
	return pc, nil
}
