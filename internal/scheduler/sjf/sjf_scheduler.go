package sjf

// Candidate 就绪队列条目（简化版本，避免循环依赖）
type Candidate struct {
	Name        string `json:"name"`
	ArrivalTime uint32 `json:"arrival_time"`
	ServiceTime uint32 `json:"service_time"`
}

// SJFScheduler 非抢占式最短作业优先调度器
type SJFScheduler struct{}

// NewSJFScheduler 创建 SJF 调度器
func NewSJFScheduler() *SJFScheduler {
	return &SJFScheduler{}
}

// SelectNext 线性扫描就绪队列，选择服务时间最短的进程；
// 服务时间相同时先到达者优先，到达时间也相同时取名称字典序较小者
func (s *SJFScheduler) SelectNext(ready []Candidate) int {
	chosen := -1

	for i := range ready {
		if chosen == -1 {
			chosen = i
			continue
		}

		current := ready[i]
		best := ready[chosen]

		switch {
		case current.ServiceTime < best.ServiceTime:
			chosen = i
		case current.ServiceTime == best.ServiceTime:
			if current.ArrivalTime < best.ArrivalTime {
				chosen = i
			} else if current.ArrivalTime == best.ArrivalTime && current.Name < best.Name {
				chosen = i
			}
		}
	}

	return chosen
}

// ShouldPreempt SJF 不抢占，运行中的进程只在完成时让出 CPU
func (s *SJFScheduler) ShouldPreempt(readyLen int) bool {
	return false
}
