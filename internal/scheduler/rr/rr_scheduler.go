package rr

// Candidate 就绪队列条目（简化版本，避免循环依赖）
type Candidate struct {
	Name        string `json:"name"`
	ArrivalTime uint32 `json:"arrival_time"`
	ServiceTime uint32 `json:"service_time"`
}

// RRScheduler 抢占式时间片轮转调度器
type RRScheduler struct{}

// NewRRScheduler 创建 RR 调度器
func NewRRScheduler() *RRScheduler {
	return &RRScheduler{}
}

// SelectNext 纯 FIFO：总是返回队首，队列为空时返回 -1
func (s *RRScheduler) SelectNext(ready []Candidate) int {
	if len(ready) == 0 {
		return -1
	}
	return 0
}

// ShouldPreempt 就绪队列非空时抢占当前运行的进程
func (s *RRScheduler) ShouldPreempt(readyLen int) bool {
	return readyLen > 0
}
