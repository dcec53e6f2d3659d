package worker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"allocate/internal/common"
)

// FakeLauncher 内存伪工作进程启动器，让调度核心无需真实进程即可运行
type FakeLauncher struct {
	mu      sync.Mutex
	handles map[string]*FakeHandle
	nextPid int
}

// NewFakeLauncher 创建伪启动器
func NewFakeLauncher() *FakeLauncher {
	return &FakeLauncher{
		handles: make(map[string]*FakeHandle),
		nextPid: 1000,
	}
}

// Launch 记录启动握手并返回确定性的伪句柄
func (l *FakeLauncher) Launch(name string, clock uint32) (Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := &FakeHandle{
		Name: name,
		pid:  l.nextPid,
		Ops:  []string{fmt.Sprintf("run@%d", clock)},
	}
	l.nextPid++
	l.handles[name] = h
	return h, nil
}

// Handle 按作业名称取回伪句柄，测试用
func (l *FakeLauncher) Handle(name string) (*FakeHandle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.handles[name]
	return h, ok
}

// FakeHandle 伪工作进程，记录协议操作序列
type FakeHandle struct {
	Name       string
	Ops        []string
	Suspended  bool
	Terminated bool
	LastClock  uint32

	pid int
}

// Suspend 记录一次挂起
func (h *FakeHandle) Suspend(clock uint32) error {
	if h.Terminated {
		return fmt.Errorf("%w: suspend after terminate", common.ErrInvalidState)
	}
	h.Ops = append(h.Ops, fmt.Sprintf("suspend@%d", clock))
	h.Suspended = true
	h.LastClock = clock
	return nil
}

// Resume 记录一次继续
func (h *FakeHandle) Resume(clock uint32) error {
	if h.Terminated {
		return fmt.Errorf("%w: resume after terminate", common.ErrInvalidState)
	}
	h.Ops = append(h.Ops, fmt.Sprintf("continue@%d", clock))
	h.Suspended = false
	h.LastClock = clock
	return nil
}

// Terminate 记录终止并返回确定性的完成哈希
func (h *FakeHandle) Terminate(clock uint32) ([]byte, error) {
	if h.Terminated {
		return nil, fmt.Errorf("%w: terminate after terminate", common.ErrInvalidState)
	}
	h.Ops = append(h.Ops, fmt.Sprintf("terminate@%d", clock))
	h.Terminated = true
	h.LastClock = clock
	return []byte(FakeHash(h.Name)), nil
}

// Pid 返回伪进程号
func (h *FakeHandle) Pid() int {
	return h.pid
}

// FakeHash 作业名称的确定性完成哈希（64 个十六进制字符）
func FakeHash(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}
