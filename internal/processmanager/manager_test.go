package processmanager

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"allocate/internal/common"
	"allocate/internal/memory"
	"allocate/internal/scheduler"
	"allocate/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingListener 记录所有分发的事件
type recordingListener struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingListener) OnEvent(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingListener) byType(eventType EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func newTestManager(t *testing.T, schedulerType, memoryStrategy string, capacity uint32, quantum uint32) (*Manager, *worker.FakeLauncher, *recordingListener) {
	t.Helper()

	strategy, err := scheduler.CreateStrategy(&common.SchedulerConfig{Type: schedulerType})
	require.NoError(t, err)
	allocator, err := memory.CreateAllocator(&common.MemoryConfig{Strategy: memoryStrategy, CapacityMB: capacity})
	require.NoError(t, err)

	launcher := worker.NewFakeLauncher()
	manager := NewManager(quantum, strategy, allocator, launcher)

	listener := &recordingListener{}
	manager.AddListener(listener)
	return manager, launcher, listener
}

func TestManagerSingleProcessEndToEnd(t *testing.T) {
	manager, launcher, listener := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 2048, 1)

	var console bytes.Buffer
	manager.AddListener(NewConsoleListener(&console))

	require.NoError(t, manager.AddProgram(&common.Program{
		Name: "P1", ArrivalTime: 0, ServiceTime: 10, MemoryRequired: 100,
	}))
	require.NoError(t, manager.Run(context.Background()))

	// READY 事件：时钟 0，偏移 0
	ready := listener.byType(EventReady)
	require.Len(t, ready, 1)
	assert.Equal(t, uint32(0), ready[0].Clock)
	assert.Equal(t, uint32(0), ready[0].AssignedAt)

	// RUNNING 事件剩余时间从 10 递减到 1
	running := listener.byType(EventRunning)
	require.Len(t, running, 10)
	for i, e := range running {
		assert.Equal(t, uint32(i), e.Clock)
		assert.Equal(t, uint32(10-i), e.RemainingTime)
	}

	// FINISHED 事件：时钟 10，剩余作业 0，外加一条哈希事件
	finished := listener.byType(EventFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, uint32(10), finished[0].Clock)
	assert.Equal(t, uint32(0), finished[0].PendingCount)

	hashed := listener.byType(EventFinishedHash)
	require.Len(t, hashed, 1)
	assert.Equal(t, worker.FakeHash("P1"), hashed[0].Hash)

	// 最终报告
	report := manager.Report()
	assert.Equal(t, uint32(10), report.Turnaround)
	assert.InDelta(t, 1.0, report.MaxOverhead, 1e-9)
	assert.InDelta(t, 1.0, report.AvgOverhead, 1e-9)
	assert.Equal(t, uint32(10), report.Makespan)
	assert.Equal(t, "Turnaround time 10\nTime overhead 1.00 1.00\nMakespan 10\n", report.String())

	// 执行记录逐行格式
	expected := "0,READY,process_name=P1,assigned_at=0\n"
	for i := 0; i < 10; i++ {
		expected += fmt.Sprintf("%d,RUNNING,process_name=P1,remaining_time=%d\n", i, 10-i)
	}
	expected += "10,FINISHED,process_name=P1,proc_remaining=0\n"
	expected += fmt.Sprintf("10,FINISHED-PROCESS,process_name=P1,sha=%s\n", worker.FakeHash("P1"))
	assert.Equal(t, expected, console.String())

	// 工作进程协议操作序列：一次启动、九次继续、一次终止
	fake, ok := launcher.Handle("P1")
	require.True(t, ok)
	require.Len(t, fake.Ops, 11)
	assert.Equal(t, "run@0", fake.Ops[0])
	assert.Equal(t, "continue@5", fake.Ops[5])
	assert.Equal(t, "terminate@10", fake.Ops[10])
	assert.True(t, fake.Terminated)
}

func TestManagerRoundRobinRotation(t *testing.T) {
	manager, launcher, listener := newTestManager(t, common.SchedulerRR, common.MemoryInfinite, 0, 1)

	require.NoError(t, manager.AddProgram(&common.Program{Name: "R", ArrivalTime: 0, ServiceTime: 5, MemoryRequired: 10}))
	require.NoError(t, manager.AddProgram(&common.Program{Name: "A", ArrivalTime: 1, ServiceTime: 1, MemoryRequired: 10}))
	require.NoError(t, manager.AddProgram(&common.Program{Name: "B", ArrivalTime: 1, ServiceTime: 1, MemoryRequired: 10}))
	require.NoError(t, manager.AddProgram(&common.Program{Name: "C", ArrivalTime: 1, ServiceTime: 1, MemoryRequired: 10}))
	require.NoError(t, manager.Run(context.Background()))

	// R 先运行，A B C 到达后在时钟 1 抢占 R，R 回到队尾
	fakeR, ok := launcher.Handle("R")
	require.True(t, ok)
	assert.Equal(t, "run@0", fakeR.Ops[0])
	assert.Equal(t, "suspend@1", fakeR.Ops[1])
	assert.Equal(t, "continue@4", fakeR.Ops[2])

	// 队首 A 在抢占后立刻运行
	fakeA, ok := launcher.Handle("A")
	require.True(t, ok)
	assert.Equal(t, "run@1", fakeA.Ops[0])

	// 完成顺序 A B C R
	finished := listener.byType(EventFinished)
	require.Len(t, finished, 4)
	assert.Equal(t, "A", finished[0].Process)
	assert.Equal(t, "B", finished[1].Process)
	assert.Equal(t, "C", finished[2].Process)
	assert.Equal(t, "R", finished[3].Process)
	assert.Equal(t, uint32(8), finished[3].Clock)

	report := manager.Report()
	assert.Equal(t, uint32(4), report.Turnaround) // ceil((1+2+3+8)/4)
	assert.InDelta(t, 3.0, report.MaxOverhead, 1e-9)
	assert.InDelta(t, 1.9, report.AvgOverhead, 1e-9)
	assert.Equal(t, uint32(8), report.Makespan)
}

func TestManagerWorkConservingAdmission(t *testing.T) {
	manager, _, listener := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 100, 1)

	require.NoError(t, manager.AddProgram(&common.Program{Name: "A", ArrivalTime: 0, ServiceTime: 2, MemoryRequired: 80}))
	require.NoError(t, manager.AddProgram(&common.Program{Name: "B", ArrivalTime: 1, ServiceTime: 1, MemoryRequired: 50}))
	require.NoError(t, manager.AddProgram(&common.Program{Name: "C", ArrivalTime: 1, ServiceTime: 1, MemoryRequired: 20}))
	require.NoError(t, manager.Run(context.Background()))

	// B 在时钟 1 分配失败留在输入队列，排在后面的 C 仍然在本时钟准入；
	// A 完成释放内存后 B 才准入
	ready := listener.byType(EventReady)
	require.Len(t, ready, 3)
	assert.Equal(t, "A", ready[0].Process)
	assert.Equal(t, uint32(0), ready[0].Clock)
	assert.Equal(t, "C", ready[1].Process)
	assert.Equal(t, uint32(1), ready[1].Clock)
	assert.Equal(t, uint32(80), ready[1].AssignedAt)
	assert.Equal(t, "B", ready[2].Process)
	assert.Equal(t, uint32(2), ready[2].Clock)
	assert.Equal(t, uint32(0), ready[2].AssignedAt)
}

func TestManagerSJFTieBreakOrder(t *testing.T) {
	manager, _, listener := newTestManager(t, common.SchedulerSJF, common.MemoryInfinite, 0, 1)

	// 服务时间与到达时间都相同，名称字典序决定先后
	require.NoError(t, manager.AddProgram(&common.Program{Name: "PB", ArrivalTime: 0, ServiceTime: 3, MemoryRequired: 10}))
	require.NoError(t, manager.AddProgram(&common.Program{Name: "PA", ArrivalTime: 0, ServiceTime: 3, MemoryRequired: 10}))
	require.NoError(t, manager.Run(context.Background()))

	finished := listener.byType(EventFinished)
	require.Len(t, finished, 2)
	assert.Equal(t, "PA", finished[0].Process)
	assert.Equal(t, "PB", finished[1].Process)
}

func TestManagerNoProgramsTerminatesImmediately(t *testing.T) {
	manager, _, listener := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 2048, 1)

	require.NoError(t, manager.Run(context.Background()))

	assert.Equal(t, uint32(0), manager.Clock())
	assert.Empty(t, listener.byType(EventFinished))
	assert.Equal(t, uint32(0), manager.Report().Makespan)
}

func TestManagerPendingCountIdentity(t *testing.T) {
	manager, _, _ := newTestManager(t, common.SchedulerRR, common.MemoryBestFit, 100, 1)

	require.NoError(t, manager.AddProgram(&common.Program{Name: "A", ArrivalTime: 0, ServiceTime: 2, MemoryRequired: 80}))
	require.NoError(t, manager.AddProgram(&common.Program{Name: "B", ArrivalTime: 0, ServiceTime: 2, MemoryRequired: 80}))
	require.NoError(t, manager.Run(context.Background()))

	assert.Equal(t, uint32(0), manager.PendingCount())

	// 活动登记表只增不减，完成的进程保留
	snapshots := manager.Snapshot()
	require.Len(t, snapshots, 2)
	for _, s := range snapshots {
		assert.Equal(t, "FINISHED", s.State)
		assert.NotEmpty(t, s.Hash)
	}
}

func TestManagerAddProgramValidation(t *testing.T) {
	manager, _, _ := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 2048, 1)

	err := manager.AddProgram(&common.Program{Name: "waytoolongname", ArrivalTime: 0, ServiceTime: 1, MemoryRequired: 1})
	assert.Error(t, err)

	err = manager.AddProgram(&common.Program{Name: "P1", ArrivalTime: 0, ServiceTime: 0, MemoryRequired: 1})
	assert.Error(t, err)
}

func TestManagerAddProgramAfterStartRejected(t *testing.T) {
	manager, _, _ := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 2048, 1)

	require.NoError(t, manager.AddProgram(&common.Program{Name: "P1", ArrivalTime: 0, ServiceTime: 1, MemoryRequired: 1}))
	require.NoError(t, manager.Run(context.Background()))

	err := manager.AddProgram(&common.Program{Name: "P2", ArrivalTime: 0, ServiceTime: 1, MemoryRequired: 1})
	assert.ErrorIs(t, err, common.ErrInvalidState)
}

func TestManagerDestroyTwiceRejected(t *testing.T) {
	manager, _, _ := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 2048, 1)

	require.NoError(t, manager.Destroy())

	err := manager.Destroy()
	assert.ErrorIs(t, err, common.ErrInvalidState)
}

func TestManagerRunAfterDestroyRejected(t *testing.T) {
	manager, _, _ := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 2048, 1)

	require.NoError(t, manager.Destroy())
	assert.ErrorIs(t, manager.Run(context.Background()), common.ErrInvalidState)
}

func TestManagerContextCancellation(t *testing.T) {
	manager, _, _ := newTestManager(t, common.SchedulerSJF, common.MemoryBestFit, 2048, 1)

	require.NoError(t, manager.AddProgram(&common.Program{Name: "P1", ArrivalTime: 0, ServiceTime: 100, MemoryRequired: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, manager.Run(ctx), context.Canceled)
}

func TestManagerInfiniteStrategyEmitsNoReadyEvents(t *testing.T) {
	manager, _, listener := newTestManager(t, common.SchedulerSJF, common.MemoryInfinite, 0, 1)

	require.NoError(t, manager.AddProgram(&common.Program{Name: "P1", ArrivalTime: 0, ServiceTime: 2, MemoryRequired: 100}))
	require.NoError(t, manager.Run(context.Background()))

	// 无限策略下没有具体内存块，不输出 READY 记录
	assert.Empty(t, listener.byType(EventReady))
	assert.Len(t, listener.byType(EventFinished), 1)
}
