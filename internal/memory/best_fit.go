package memory

import (
	"allocate/internal/common"

	"go.uber.org/zap"
)

// BestFitAllocator 最佳适应分配器，空闲块按偏移升序维护
type BestFitAllocator struct {
	capacity uint32
	used     uint32
	free     []Block
	logger   *zap.Logger
}

// NewBestFitAllocator 创建最佳适应分配器，初始时整个内存池为一个空闲块
func NewBestFitAllocator(capacity uint32) *BestFitAllocator {
	return &BestFitAllocator{
		capacity: capacity,
		free:     []Block{{Offset: 0, Size: capacity}},
		logger:   common.ComponentLogger("allocator"),
	}
}

// Allocate 按偏移顺序扫描空闲链表，选择剩余量最小的块；
// 剩余量相同时取先遇到的（偏移更小的）块
func (a *BestFitAllocator) Allocate(size uint32) (*Block, bool) {
	chosen := -1
	var minGap uint32

	for i := range a.free {
		if a.free[i].Size < size {
			continue
		}
		gap := a.free[i].Size - size
		if chosen == -1 || gap < minGap {
			chosen = i
			minGap = gap
		}
	}

	if chosen == -1 {
		a.logger.Debug("allocation failed",
			zap.Uint32("requested", size),
			zap.Int("free_blocks", len(a.free)))
		return nil, false
	}

	block := &Block{Offset: a.free[chosen].Offset, Size: size}

	// 收缩被选中的空闲块
	a.free[chosen].Offset += size
	a.free[chosen].Size -= size
	if a.free[chosen].Size == 0 {
		a.free = append(a.free[:chosen], a.free[chosen+1:]...)
	}
	a.used += size

	a.logger.Debug("allocated block",
		zap.Uint32("offset", block.Offset),
		zap.Uint32("size", block.Size))
	return block, true
}

// Release 将内存块按偏移插回空闲链表，然后做一次从左到右的合并
func (a *BestFitAllocator) Release(block *Block) {
	if block == nil {
		return
	}

	// 按偏移有序插入；相等偏移按"小于"处理，与空闲块互不重叠的
	// 前提下不会出现
	pos := len(a.free)
	for i := range a.free {
		if block.Offset <= a.free[i].Offset {
			pos = i
			break
		}
	}
	a.free = append(a.free, Block{})
	copy(a.free[pos+1:], a.free[pos:])
	a.free[pos] = *block
	a.used -= block.Size

	// 相邻块向后合并，直到不存在相邻对
	for i := 0; i < len(a.free)-1; {
		if a.free[i].Offset+a.free[i].Size == a.free[i+1].Offset {
			a.free[i+1].Offset -= a.free[i].Size
			a.free[i+1].Size += a.free[i].Size
			a.free = append(a.free[:i], a.free[i+1:]...)
			continue
		}
		i++
	}

	a.logger.Debug("released block",
		zap.Uint32("offset", block.Offset),
		zap.Uint32("size", block.Size),
		zap.Int("free_blocks", len(a.free)))
}

// Capacity 返回内存池总容量
func (a *BestFitAllocator) Capacity() uint32 {
	return a.capacity
}

// UsedBytes 返回当前已分配的内存量
func (a *BestFitAllocator) UsedBytes() uint32 {
	return a.used
}

// FreeBlocks 返回空闲块快照
func (a *BestFitAllocator) FreeBlocks() []Block {
	snapshot := make([]Block, len(a.free))
	copy(snapshot, a.free)
	return snapshot
}

// Strategy 返回分配策略名称
func (a *BestFitAllocator) Strategy() string {
	return common.MemoryBestFit
}
