package memory

import (
	"fmt"
	"strings"

	"allocate/internal/common"

	"go.uber.org/zap"
)

// CreateAllocator 根据配置创建内存分配器
func CreateAllocator(config *common.MemoryConfig) (Allocator, error) {
	logger := common.ComponentLogger("allocator")

	var strategy string
	if config == nil || config.Strategy == "" {
		strategy = common.MemoryBestFit // 默认使用最佳适应策略
	} else {
		strategy = strings.ToLower(strings.TrimSpace(config.Strategy))
	}

	switch strategy {
	case common.MemoryInfinite:
		logger.Info("creating infinite allocator")
		return NewInfiniteAllocator(), nil

	case common.MemoryBestFit:
		capacity := uint32(common.DefaultMemoryCapacity)
		if config != nil && config.CapacityMB > 0 {
			capacity = config.CapacityMB
		}
		logger.Info("creating best-fit allocator", zap.Uint32("capacity_mb", capacity))
		return NewBestFitAllocator(capacity), nil

	default:
		return nil, fmt.Errorf("unsupported memory strategy: %s", strategy)
	}
}
