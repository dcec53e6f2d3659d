package common

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 全局配置
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Memory     MemoryConfig     `yaml:"memory"`
	Worker     WorkerConfig     `yaml:"worker"`
	Events     EventsConfig     `yaml:"events"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SimulationConfig 模拟循环配置
type SimulationConfig struct {
	Quantum uint32 `yaml:"quantum"`
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	Type string `yaml:"type"` // sjf, rr
}

// MemoryConfig 内存分配器配置
type MemoryConfig struct {
	Strategy   string `yaml:"strategy"` // infinite, best-fit
	CapacityMB uint32 `yaml:"capacity_mb"`
}

// WorkerConfig 工作进程配置
type WorkerConfig struct {
	Command string `yaml:"command"`
	Fake    bool   `yaml:"fake"` // 使用内存伪工作进程而非真实进程
}

// EventsConfig 事件发布配置
type EventsConfig struct {
	KafkaEnabled bool     `yaml:"kafka_enabled"`
	Brokers      []string `yaml:"brokers"`
	Topic        string   `yaml:"topic"`
}

// HTTPConfig HTTP 状态服务配置
type HTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

// GetDefaultConfig 获取默认配置
func GetDefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Quantum: 1,
		},
		Scheduler: SchedulerConfig{
			Type: SchedulerSJF,
		},
		Memory: MemoryConfig{
			Strategy:   MemoryBestFit,
			CapacityMB: DefaultMemoryCapacity,
		},
		Worker: WorkerConfig{
			Command: getEnvOrDefault("ALLOCATE_WORKER", "./process"),
			Fake:    false,
		},
		Events: EventsConfig{
			KafkaEnabled: false,
			Brokers:      []string{getEnvOrDefault("ALLOCATE_KAFKA_BROKER", "localhost:9092")},
			Topic:        "allocate-events",
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Port:    getEnvIntOrDefault("ALLOCATE_HTTP_PORT", 8088),
		},
		Logging: LoggingConfig{
			Development: false,
			File:        "",
		},
	}
}

// LoadConfig 从 YAML 文件加载配置，缺省字段使用默认值
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ValidateConfig 验证配置
func ValidateConfig(config *Config) error {
	if config == nil {
		return ErrInvalidConfiguration
	}
	if config.Simulation.Quantum == 0 {
		return NewValidationError("simulation.quantum", "must be greater than 0", config.Simulation.Quantum)
	}
	if err := ValidateSchedulerType(config.Scheduler.Type); err != nil {
		return err
	}
	if err := ValidateMemoryStrategy(config.Memory.Strategy); err != nil {
		return err
	}
	if config.Memory.Strategy == MemoryBestFit && config.Memory.CapacityMB == 0 {
		return NewValidationError("memory.capacity_mb", "must be greater than 0", config.Memory.CapacityMB)
	}
	if config.Events.KafkaEnabled && len(config.Events.Brokers) == 0 {
		return NewValidationError("events.brokers", "cannot be empty when kafka is enabled", config.Events.Brokers)
	}
	if config.HTTP.Enabled && (config.HTTP.Port <= 0 || config.HTTP.Port > 65535) {
		return NewValidationError("http.port", "must be between 1 and 65535", config.HTTP.Port)
	}
	return nil
}

// getEnvOrDefault 获取环境变量或使用默认值
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault 获取环境变量整数值或使用默认值
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
