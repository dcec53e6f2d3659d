package memory

import "allocate/internal/common"

// InfiniteAllocator 无限内存策略，分配永远成功且不做任何记账
type InfiniteAllocator struct{}

// NewInfiniteAllocator 创建无限内存分配器
func NewInfiniteAllocator() *InfiniteAllocator {
	return &InfiniteAllocator{}
}

// Allocate 总是成功，不返回具体内存块
func (a *InfiniteAllocator) Allocate(size uint32) (*Block, bool) {
	return nil, true
}

// Release 无限策略不做任何事
func (a *InfiniteAllocator) Release(block *Block) {}

// Capacity 无限策略没有容量上限
func (a *InfiniteAllocator) Capacity() uint32 {
	return 0
}

// UsedBytes 无限策略不跟踪使用量
func (a *InfiniteAllocator) UsedBytes() uint32 {
	return 0
}

// FreeBlocks 无限策略没有空闲链表
func (a *InfiniteAllocator) FreeBlocks() []Block {
	return nil
}

// Strategy 返回分配策略名称
func (a *InfiniteAllocator) Strategy() string {
	return common.MemoryInfinite
}
