package scheduler

// Candidate 就绪队列中一个可被调度的进程视图
type Candidate struct {
	Name        string `json:"name"`
	ArrivalTime uint32 `json:"arrival_time"`
	ServiceTime uint32 `json:"service_time"`
}

// Strategy 调度策略接口
type Strategy interface {
	// SelectNext 从就绪队列中选出下一个运行的进程，返回其下标；
	// 队列为空或无可选进程时返回 -1
	SelectNext(ready []Candidate) int

	// ShouldPreempt 决定当前运行中的进程是否应让出 CPU
	ShouldPreempt(readyLen int) bool

	// Name 返回策略名称
	Name() string
}
