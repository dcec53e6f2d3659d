package common

// MaxProgramNameLen 程序名称的最大长度
const MaxProgramNameLen = 8

// DefaultMemoryCapacity 默认内存池容量（MB）
const DefaultMemoryCapacity = 2048

// 调度器类型
const (
	SchedulerSJF = "sjf"
	SchedulerRR  = "rr"
)

// 内存分配策略
const (
	MemoryInfinite = "infinite"
	MemoryBestFit  = "best-fit"
)

// Program 描述一个待运行的作业，模拟开始后不可变
type Program struct {
	Name           string `json:"name" yaml:"name"`
	ArrivalTime    uint32 `json:"arrival_time" yaml:"arrival_time"`
	ServiceTime    uint32 `json:"service_time" yaml:"service_time"`
	MemoryRequired uint16 `json:"memory_required" yaml:"memory_required"`
}
