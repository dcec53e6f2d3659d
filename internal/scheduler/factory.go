package scheduler

import (
	"fmt"
	"strings"

	"allocate/internal/common"
	"allocate/internal/scheduler/rr"
	"allocate/internal/scheduler/sjf"
)

// StrategyAdapter 调度策略适配器
type StrategyAdapter struct {
	sjfScheduler *sjf.SJFScheduler
	rrScheduler  *rr.RRScheduler
	strategyType string
}

// SelectNext 从就绪队列中选出下一个运行的进程
func (sa *StrategyAdapter) SelectNext(ready []Candidate) int {
	switch sa.strategyType {
	case common.SchedulerSJF:
		if sa.sjfScheduler != nil {
			candidates := make([]sjf.Candidate, len(ready))
			for i, c := range ready {
				candidates[i] = sjf.Candidate{
					Name:        c.Name,
					ArrivalTime: c.ArrivalTime,
					ServiceTime: c.ServiceTime,
				}
			}
			return sa.sjfScheduler.SelectNext(candidates)
		}
	case common.SchedulerRR:
		if sa.rrScheduler != nil {
			candidates := make([]rr.Candidate, len(ready))
			for i, c := range ready {
				candidates[i] = rr.Candidate{
					Name:        c.Name,
					ArrivalTime: c.ArrivalTime,
					ServiceTime: c.ServiceTime,
				}
			}
			return sa.rrScheduler.SelectNext(candidates)
		}
	}
	return -1
}

// ShouldPreempt 决定当前运行中的进程是否应让出 CPU
func (sa *StrategyAdapter) ShouldPreempt(readyLen int) bool {
	switch sa.strategyType {
	case common.SchedulerSJF:
		if sa.sjfScheduler != nil {
			return sa.sjfScheduler.ShouldPreempt(readyLen)
		}
	case common.SchedulerRR:
		if sa.rrScheduler != nil {
			return sa.rrScheduler.ShouldPreempt(readyLen)
		}
	}
	return false
}

// Name 返回策略名称
func (sa *StrategyAdapter) Name() string {
	return sa.strategyType
}

// CreateStrategy 根据配置创建调度策略
func CreateStrategy(config *common.SchedulerConfig) (Strategy, error) {
	logger := common.ComponentLogger("scheduler")

	var strategyType string
	if config == nil || config.Type == "" {
		strategyType = common.SchedulerSJF // 默认使用 SJF 调度器
	} else {
		strategyType = strings.ToLower(strings.TrimSpace(config.Type))
	}

	adapter := &StrategyAdapter{strategyType: strategyType}

	switch strategyType {
	case common.SchedulerSJF:
		logger.Info("creating SJF scheduler")
		adapter.sjfScheduler = sjf.NewSJFScheduler()
		return adapter, nil

	case common.SchedulerRR:
		logger.Info("creating RR scheduler")
		adapter.rrScheduler = rr.NewRRScheduler()
		return adapter, nil

	default:
		return nil, fmt.Errorf("unsupported scheduler type: %s", strategyType)
	}
}
