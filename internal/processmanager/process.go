package processmanager

import (
	"allocate/internal/common"
	"allocate/internal/memory"
	"allocate/internal/worker"
)

// ProcessState 进程状态
type ProcessState int

const (
	ProcessStateReady ProcessState = iota
	ProcessStateRunning
	ProcessStateFinished
)

// String 返回进程状态字符串
func (ps ProcessState) String() string {
	switch ps {
	case ProcessStateReady:
		return "READY"
	case ProcessStateRunning:
		return "RUNNING"
	case ProcessStateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Process 一个已准入作业的运行时状态。
// 进入 Finished 后除统计信息外只读，并一直保留在活动登记表中
type Process struct {
	Program *common.Program
	State   ProcessState
	RunTime uint32
	Block   *memory.Block
	Hash    string

	// worker 为 nil 表示工作进程尚未生成
	worker worker.Handle
}

// RemainingTime 返回剩余服务时间
func (p *Process) RemainingTime() uint32 {
	if p.RunTime >= p.Program.ServiceTime {
		return 0
	}
	return p.Program.ServiceTime - p.RunTime
}

// ProcessSnapshot 供状态服务读取的进程快照
type ProcessSnapshot struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	ArrivalTime   uint32 `json:"arrival_time"`
	ServiceTime   uint32 `json:"service_time"`
	RunTime       uint32 `json:"run_time"`
	RemainingTime uint32 `json:"remaining_time"`
	MemoryOffset  uint32 `json:"memory_offset,omitempty"`
	MemorySize    uint32 `json:"memory_size,omitempty"`
	Pid           int    `json:"pid,omitempty"`
	Hash          string `json:"hash,omitempty"`
}

func (p *Process) snapshot() ProcessSnapshot {
	s := ProcessSnapshot{
		Name:          p.Program.Name,
		State:         p.State.String(),
		ArrivalTime:   p.Program.ArrivalTime,
		ServiceTime:   p.Program.ServiceTime,
		RunTime:       p.RunTime,
		RemainingTime: p.RemainingTime(),
		Hash:          p.Hash,
	}
	if p.Block != nil {
		s.MemoryOffset = p.Block.Offset
		s.MemorySize = p.Block.Size
	}
	if p.worker != nil {
		s.Pid = p.worker.Pid()
	}
	return s
}
