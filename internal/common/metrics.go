package common

import (
	"runtime"
	"sync"
	"time"
)

// Metrics 模拟运行指标
type Metrics struct {
	mu sync.RWMutex

	// 系统指标
	StartTime time.Time `json:"start_time"`

	// 模拟进度指标
	Clock            uint32 `json:"clock"`
	ProgramsLoaded   int64  `json:"programs_loaded"`
	ProgramsAdmitted int64  `json:"programs_admitted"`
	ProgramsFinished int64  `json:"programs_finished"`
	IdleTicks        int64  `json:"idle_ticks"`
	Preemptions      int64  `json:"preemptions"`

	// 内存指标
	MemoryCapacityMB int64 `json:"memory_capacity_mb"`
	MemoryUsedMB     int64 `json:"memory_used_mb"`
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// GetMetrics 获取全局指标实例
func GetMetrics() *Metrics {
	return globalMetrics
}

// UpdateClock 更新模拟时钟指标
func (m *Metrics) UpdateClock(clock uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clock = clock
}

// IncrementLoaded 增加已加载作业计数
func (m *Metrics) IncrementLoaded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgramsLoaded++
}

// IncrementAdmitted 增加已准入作业计数
func (m *Metrics) IncrementAdmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgramsAdmitted++
}

// IncrementFinished 增加已完成作业计数
func (m *Metrics) IncrementFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgramsFinished++
}

// IncrementIdleTicks 增加 CPU 空转计数
func (m *Metrics) IncrementIdleTicks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IdleTicks++
}

// IncrementPreemptions 增加抢占计数
func (m *Metrics) IncrementPreemptions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Preemptions++
}

// UpdateMemoryMetrics 更新内存使用指标
func (m *Metrics) UpdateMemoryMetrics(capacityMB, usedMB int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MemoryCapacityMB = capacityMB
	m.MemoryUsedMB = usedMB
}

// GetSnapshot 获取指标快照
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 获取系统内存统计
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return map[string]interface{}{
		"uptime_seconds":     time.Since(m.StartTime).Seconds(),
		"clock":              m.Clock,
		"programs_loaded":    m.ProgramsLoaded,
		"programs_admitted":  m.ProgramsAdmitted,
		"programs_finished":  m.ProgramsFinished,
		"idle_ticks":         m.IdleTicks,
		"preemptions":        m.Preemptions,
		"memory_capacity_mb": m.MemoryCapacityMB,
		"memory_used_mb":     m.MemoryUsedMB,
		"system_memory_mb":   int64(memStats.Sys / 1024 / 1024),
		"heap_memory_mb":     int64(memStats.HeapInuse / 1024 / 1024),
		"goroutines":         runtime.NumGoroutine(),
	}
}
