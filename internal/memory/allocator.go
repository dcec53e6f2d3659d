package memory

// Block 固定容量内存池中的一段连续区间
type Block struct {
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

// Allocator 内存分配器接口
type Allocator interface {
	// Allocate 尝试分配 size MB 的内存块，失败时返回 (nil, false)
	Allocate(size uint32) (*Block, bool)

	// Release 将进程持有的内存块归还给分配器
	Release(block *Block)

	// Capacity 返回内存池总容量
	Capacity() uint32

	// UsedBytes 返回当前已分配的内存量
	UsedBytes() uint32

	// FreeBlocks 返回按偏移排序的空闲块快照
	FreeBlocks() []Block

	// Strategy 返回分配策略名称
	Strategy() string
}
