package processmanager

import (
	"fmt"
	"math"
)

// stats 运行期统计累加器
type stats struct {
	turnaroundSum float64
	overheadSum   float64
	maxOverhead   float64
	finished      uint32
}

// record 在进程终止时累加统计
func (s *stats) record(turnaround, serviceTime uint32) {
	overhead := float64(turnaround) / float64(serviceTime)
	s.turnaroundSum += float64(turnaround)
	s.overheadSum += overhead
	if s.maxOverhead == 0 || s.maxOverhead < overhead {
		s.maxOverhead = overhead
	}
	s.finished++
}

// Report 模拟结束时的汇总报告
type Report struct {
	Turnaround  uint32  `json:"turnaround"`
	MaxOverhead float64 `json:"max_overhead"`
	AvgOverhead float64 `json:"avg_overhead"`
	Makespan    uint32  `json:"makespan"`
}

// makeReport 生成汇总报告。平均周转时间向上取整
func (s *stats) makeReport(programCount int, clock uint32) Report {
	if programCount == 0 {
		return Report{Makespan: clock}
	}
	return Report{
		Turnaround:  uint32(math.Ceil(s.turnaroundSum / float64(programCount))),
		MaxOverhead: s.maxOverhead,
		AvgOverhead: s.overheadSum / float64(programCount),
		Makespan:    clock,
	}
}

// String 按最终报告格式输出
func (r Report) String() string {
	return fmt.Sprintf("Turnaround time %d\nTime overhead %.2f %.2f\nMakespan %d\n",
		r.Turnaround, r.MaxOverhead, r.AvgOverhead, r.Makespan)
}
