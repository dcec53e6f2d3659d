package processmanager

import (
	"context"
	"fmt"
	"sync"

	"allocate/internal/common"
	"allocate/internal/memory"
	"allocate/internal/scheduler"
	"allocate/internal/worker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager 进程管理器，独占持有一次模拟运行的全部可变状态：
// 时钟、输入队列、就绪队列、活动登记表和空闲内存。
// 模拟循环是唯一的写入方，只读快照通过读锁暴露给状态服务
type Manager struct {
	mu     sync.RWMutex
	logger *zap.Logger
	runID  string

	quantum   uint32
	strategy  scheduler.Strategy
	allocator memory.Allocator
	launcher  worker.Launcher

	dispatcher *EventDispatcher
	metrics    *common.Metrics

	clock        uint32
	programs     []*common.Program
	nextArrival  int
	input        []*common.Program
	ready        []*Process
	active       []*Process
	running      *Process
	pendingCount uint32

	stats stats

	started   bool
	destroyed bool
}

// NewManager 创建进程管理器
func NewManager(quantum uint32, strategy scheduler.Strategy, allocator memory.Allocator, launcher worker.Launcher) *Manager {
	runID := uuid.New().String()
	return &Manager{
		logger:     common.ComponentLogger("processmanager").With(zap.String("run_id", runID)),
		runID:      runID,
		quantum:    quantum,
		strategy:   strategy,
		allocator:  allocator,
		launcher:   launcher,
		dispatcher: NewEventDispatcher(),
		metrics:    common.GetMetrics(),
	}
}

// RunID 返回本次模拟运行的标识
func (m *Manager) RunID() string {
	return m.runID
}

// AddListener 注册模拟事件监听器
func (m *Manager) AddListener(listener Listener) {
	m.dispatcher.AddListener(listener)
}

// AddProgram 在模拟开始前登记一个作业。登记顺序即到达检查顺序
func (m *Manager) AddProgram(program *common.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return fmt.Errorf("%w: manager already destroyed", common.ErrInvalidState)
	}
	if m.started {
		return fmt.Errorf("%w: simulation already started", common.ErrInvalidState)
	}
	if err := common.ValidateProgram(program); err != nil {
		return err
	}

	m.programs = append(m.programs, program)
	m.metrics.IncrementLoaded()
	m.logger.Debug("program added",
		zap.String("name", program.Name),
		zap.Uint32("arrival_time", program.ArrivalTime),
		zap.Uint32("service_time", program.ServiceTime),
		zap.Uint16("memory_required", program.MemoryRequired))
	return nil
}

// Run 驱动模拟循环直到所有作业完成。
// 任何工作进程协议错误都不可恢复，立即中止整次运行
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return fmt.Errorf("%w: manager already destroyed", common.ErrInvalidState)
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info("simulation starting",
		zap.String("scheduler", m.strategy.Name()),
		zap.String("memory_strategy", m.allocator.Strategy()),
		zap.Uint32("quantum", m.quantum),
		zap.Int("programs", len(m.programs)))

	for !m.ShouldTerminate() {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.mu.Lock()
		m.checkPending()
		keep, err := m.keepRunning()
		if err == nil && !keep {
			err = m.switchProcess()
		}
		if err == nil {
			err = m.update()
		}
		m.mu.Unlock()

		if err != nil {
			m.logger.Error("simulation aborted", zap.Error(err))
			return err
		}
	}

	m.logger.Info("simulation finished", zap.Uint32("makespan", m.clock))
	return nil
}

// ShouldTerminate 判断模拟循环是否应该结束：
// 所有登记的作业都已完成，或从未登记过任何作业
func (m *Manager) ShouldTerminate() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.active) == 0 {
		return len(m.programs) == 0
	}
	if len(m.active) != len(m.programs) {
		return false
	}
	for _, p := range m.active {
		if p.State != ProcessStateFinished {
			return false
		}
	}
	return true
}

// checkPending 准入检查。先把已到达的作业按登记顺序移入输入队列，
// 再按序尝试为每个输入队列条目分配内存；分配失败的条目留在原位，
// 继续检查后面的条目（保持工作保全而非严格 FIFO 阻塞）
func (m *Manager) checkPending() {
	for m.nextArrival < len(m.programs) {
		program := m.programs[m.nextArrival]
		if program.ArrivalTime > m.clock {
			break
		}
		m.input = append(m.input, program)
		m.pendingCount++
		m.nextArrival++
	}

	for i := 0; i < len(m.input); {
		program := m.input[i]
		block, ok := m.allocator.Allocate(uint32(program.MemoryRequired))
		if !ok {
			// 内存不足不是错误，下个时钟继续重试
			i++
			continue
		}

		process := &Process{
			Program: program,
			State:   ProcessStateReady,
			Block:   block,
		}
		m.active = append(m.active, process)
		m.ready = append(m.ready, process)
		m.input = append(m.input[:i], m.input[i+1:]...)
		m.metrics.IncrementAdmitted()
		m.updateMemoryMetrics()

		if block != nil {
			m.dispatcher.Dispatch(Event{
				Clock:      m.clock,
				Type:       EventReady,
				Process:    program.Name,
				AssignedAt: block.Offset,
			})
		}
	}
}

// keepRunning 询问调度策略当前运行中的进程是否继续占用 CPU。
// 继续运行的进程每个时钟都会收到一次时钟同步握手
func (m *Manager) keepRunning() (bool, error) {
	if m.running == nil {
		return false, nil
	}

	if m.strategy.ShouldPreempt(len(m.ready)) {
		if err := m.running.worker.Suspend(m.clock); err != nil {
			return false, err
		}
		m.running.State = ProcessStateReady
		m.ready = append(m.ready, m.running)
		m.running = nil
		m.metrics.IncrementPreemptions()
		return false, nil
	}

	if err := m.running.worker.Resume(m.clock); err != nil {
		return false, err
	}
	m.dispatcher.Dispatch(Event{
		Clock:         m.clock,
		Type:          EventRunning,
		Process:       m.running.Program.Name,
		RemainingTime: m.running.RemainingTime(),
	})
	return true, nil
}

// switchProcess 让调度策略从就绪队列中选出下一个进程并使其运行；
// 首次运行时生成工作进程，之后复用同一个工作进程
func (m *Manager) switchProcess() error {
	candidates := make([]scheduler.Candidate, len(m.ready))
	for i, p := range m.ready {
		candidates[i] = scheduler.Candidate{
			Name:        p.Program.Name,
			ArrivalTime: p.Program.ArrivalTime,
			ServiceTime: p.Program.ServiceTime,
		}
	}

	idx := m.strategy.SelectNext(candidates)
	if idx < 0 {
		// 没有就绪进程，本时钟 CPU 空转
		m.metrics.IncrementIdleTicks()
		return nil
	}

	process := m.ready[idx]
	m.ready = append(m.ready[:idx], m.ready[idx+1:]...)
	process.State = ProcessStateRunning
	m.running = process

	m.dispatcher.Dispatch(Event{
		Clock:         m.clock,
		Type:          EventRunning,
		Process:       process.Program.Name,
		RemainingTime: process.RemainingTime(),
	})

	if process.worker == nil {
		handle, err := m.launcher.Launch(process.Program.Name, m.clock)
		if err != nil {
			return err
		}
		process.worker = handle
		return nil
	}
	return process.worker.Resume(m.clock)
}

// update 推进时钟一个时间片。运行中的进程累计运行时间，
// 服务时间耗尽时终止它、回收内存并记录统计
func (m *Manager) update() error {
	m.clock += m.quantum
	m.metrics.UpdateClock(m.clock)

	if m.running == nil {
		return nil
	}
	m.running.RunTime += m.quantum
	if m.running.RunTime < m.running.Program.ServiceTime {
		return nil
	}

	process := m.running
	m.pendingCount--

	hash, err := process.worker.Terminate(m.clock)
	if err != nil {
		return err
	}
	process.Hash = string(hash)
	process.State = ProcessStateFinished

	if m.allocator.Strategy() == common.MemoryBestFit && process.Block != nil {
		m.allocator.Release(process.Block)
		process.Block = nil
		m.updateMemoryMetrics()
	}

	m.dispatcher.Dispatch(Event{
		Clock:        m.clock,
		Type:         EventFinished,
		Process:      process.Program.Name,
		PendingCount: m.pendingCount,
	})
	m.dispatcher.Dispatch(Event{
		Clock:   m.clock,
		Type:    EventFinishedHash,
		Process: process.Program.Name,
		Hash:    process.Hash,
	})

	m.stats.record(m.clock-process.Program.ArrivalTime, process.Program.ServiceTime)
	m.metrics.IncrementFinished()
	m.running = nil
	return nil
}

func (m *Manager) updateMemoryMetrics() {
	m.metrics.UpdateMemoryMetrics(int64(m.allocator.Capacity()), int64(m.allocator.UsedBytes()))
}

// Clock 返回当前模拟时钟
func (m *Manager) Clock() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clock
}

// PendingCount 返回未完成作业数（输入队列 + 未完成的活动进程）
func (m *Manager) PendingCount() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pendingCount
}

// Snapshot 返回活动登记表中所有进程的快照
func (m *Manager) Snapshot() []ProcessSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshots := make([]ProcessSnapshot, len(m.active))
	for i, p := range m.active {
		snapshots[i] = p.snapshot()
	}
	return snapshots
}

// MemorySnapshot 返回空闲内存块快照
func (m *Manager) MemorySnapshot() []memory.Block {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allocator.FreeBlocks()
}

// Report 返回当前统计报告。所有作业完成前调用得到的是中间值
func (m *Manager) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.makeReport(len(m.programs), m.clock)
}

// Destroy 结束一次模拟运行并释放管理器。
// 对已销毁的管理器再次调用是契约违规，返回错误而非静默成功
func (m *Manager) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return fmt.Errorf("%w: manager already destroyed", common.ErrInvalidState)
	}
	m.destroyed = true
	m.logger.Debug("manager destroyed")
	return nil
}
