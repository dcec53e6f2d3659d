package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"allocate/internal/common"
	"allocate/internal/events"
	"allocate/internal/jobfile"
	"allocate/internal/memory"
	"allocate/internal/processmanager"
	"allocate/internal/processmanager/server"
	"allocate/internal/scheduler"
	"allocate/internal/worker"

	"go.uber.org/zap"
)

func main() {
	var (
		jobsFile    = flag.String("f", "", "Jobs file path")
		schedType   = flag.String("s", "", "Scheduler type (sjf, rr)")
		memStrategy = flag.String("m", "", "Memory strategy (infinite, best-fit)")
		quantum     = flag.Uint("q", 0, "Quantum length in seconds")
		configFile  = flag.String("config", "", "Configuration file path")
		development = flag.Bool("dev", false, "Enable development mode")
		httpPort    = flag.Int("http-port", 0, "Enable status HTTP server on this port")
		workerCmd   = flag.String("worker", "", "Worker process command")
		fakeWorkers = flag.Bool("fake-workers", false, "Use in-memory fake workers")
		kafka       = flag.Bool("kafka", false, "Publish lifecycle events to Kafka")
	)
	flag.Parse()

	// 加载配置文件，命令行参数覆盖配置项
	config := common.GetDefaultConfig()
	if *configFile != "" {
		loaded, err := common.LoadConfig(*configFile)
		if err != nil {
			panic(err)
		}
		config = loaded
	}
	if *schedType != "" {
		config.Scheduler.Type = *schedType
	}
	if *memStrategy != "" {
		config.Memory.Strategy = *memStrategy
	}
	if *quantum > 0 {
		config.Simulation.Quantum = uint32(*quantum)
	}
	if *workerCmd != "" {
		config.Worker.Command = *workerCmd
	}
	if *fakeWorkers {
		config.Worker.Fake = true
	}
	if *kafka {
		config.Events.KafkaEnabled = true
	}
	if *httpPort > 0 {
		config.HTTP.Enabled = true
		config.HTTP.Port = *httpPort
	}
	if *development {
		config.Logging.Development = true
	}
	if err := common.ValidateConfig(config); err != nil {
		panic(err)
	}

	// 初始化日志系统
	if err := common.InitLogger(config.Logging.Development, config.Logging.File); err != nil {
		panic(err)
	}
	defer common.Sync()

	logger := common.ComponentLogger("allocate")
	logger.Info("Starting allocate simulation",
		zap.String("jobs_file", *jobsFile),
		zap.Bool("development", config.Logging.Development))

	logger.Info("Configuration loaded",
		zap.String("scheduler_type", config.Scheduler.Type),
		zap.String("memory_strategy", config.Memory.Strategy),
		zap.Uint32("quantum", config.Simulation.Quantum))

	if *jobsFile == "" {
		logger.Fatal("Jobs file is required, use -f")
	}
	programs, err := jobfile.ParseFile(*jobsFile)
	if err != nil {
		logger.Fatal("Failed to parse jobs file", zap.Error(err))
	}

	// 创建内存分配器与调度策略
	allocator, err := memory.CreateAllocator(&config.Memory)
	if err != nil {
		logger.Fatal("Failed to create allocator", zap.Error(err))
	}
	strategy, err := scheduler.CreateStrategy(&config.Scheduler)
	if err != nil {
		logger.Fatal("Failed to create scheduler strategy", zap.Error(err))
	}

	var launcher worker.Launcher
	if config.Worker.Fake {
		launcher = worker.NewFakeLauncher()
	} else {
		launcher = worker.NewExecLauncher(config.Worker.Command)
	}

	// 创建进程管理器
	pm := processmanager.NewManager(config.Simulation.Quantum, strategy, allocator, launcher)
	pm.AddListener(processmanager.NewConsoleListener(os.Stdout))

	if config.Events.KafkaEnabled {
		sink := events.NewKafkaSink(&config.Events, pm.RunID())
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("Error closing kafka sink", zap.Error(err))
			}
		}()
		pm.AddListener(sink)
	}

	if config.HTTP.Enabled {
		httpServer := server.NewHTTPServer(pm, common.ComponentLogger("http_server"))
		if err := httpServer.Start(config.HTTP.Port); err != nil {
			logger.Fatal("Failed to start status HTTP server", zap.Error(err))
		}
		defer func() {
			if err := httpServer.Stop(); err != nil {
				logger.Error("Error stopping HTTP server", zap.Error(err))
			}
		}()
	}

	for _, program := range programs {
		if err := pm.AddProgram(program); err != nil {
			logger.Fatal("Failed to register program",
				zap.String("name", program.Name),
				zap.Error(err))
		}
	}

	// 优雅关闭处理
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)

	go func() {
		<-sigChan
		logger.Info("Received shutdown signal")
		cancel()
	}()

	if err := pm.Run(ctx); err != nil {
		logger.Fatal("Simulation failed", zap.Error(err))
	}

	fmt.Print(pm.Report().String())

	if err := pm.Destroy(); err != nil {
		logger.Error("Error destroying process manager", zap.Error(err))
	}
	logger.Info("Simulation finished",
		zap.Uint32("makespan", pm.Clock()))
}
