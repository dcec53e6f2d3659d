package main

import (
	"context"
	"fmt"
	"os"

	"allocate/internal/common"
	"allocate/internal/memory"
	"allocate/internal/processmanager"
	"allocate/internal/scheduler"
	"allocate/internal/worker"
)

func main() {
	// 测试不同调度策略与内存策略的创建

	// 测试SJF调度器
	fmt.Println("=== 测试SJF调度器 ===")
	sjfStrategy, err := scheduler.CreateStrategy(&common.SchedulerConfig{Type: "sjf"})
	fmt.Printf("SJF 策略创建成功: %v (err=%v)\n", sjfStrategy != nil, err)

	// 测试RR调度器
	fmt.Println("\n=== 测试RR调度器 ===")
	rrStrategy, err := scheduler.CreateStrategy(&common.SchedulerConfig{Type: "rr"})
	fmt.Printf("RR 策略创建成功: %v (err=%v)\n", rrStrategy != nil, err)

	// 测试best-fit分配器
	fmt.Println("\n=== 测试best-fit分配器 ===")
	bestFit, err := memory.CreateAllocator(&common.MemoryConfig{
		Strategy:   "best-fit",
		CapacityMB: 2048,
	})
	fmt.Printf("best-fit 分配器创建成功: %v (err=%v)\n", bestFit != nil, err)

	// 测试infinite分配器
	fmt.Println("\n=== 测试infinite分配器 ===")
	infinite, err := memory.CreateAllocator(&common.MemoryConfig{Strategy: "infinite"})
	fmt.Printf("infinite 分配器创建成功: %v (err=%v)\n", infinite != nil, err)

	// 使用伪工作进程跑一次完整模拟
	fmt.Println("\n=== 端到端模拟 ===")
	pm := processmanager.NewManager(1, rrStrategy, bestFit, worker.NewFakeLauncher())
	pm.AddListener(processmanager.NewConsoleListener(os.Stdout))
	if err := pm.AddProgram(&common.Program{Name: "demo", ArrivalTime: 0, ServiceTime: 3, MemoryRequired: 100}); err != nil {
		fmt.Printf("注册程序失败: %v\n", err)
		return
	}
	if err := pm.Run(context.Background()); err != nil {
		fmt.Printf("模拟运行失败: %v\n", err)
		return
	}
	fmt.Print(pm.Report().String())

	fmt.Println("\n=== 所有调度器集成测试完成 ===")
}
