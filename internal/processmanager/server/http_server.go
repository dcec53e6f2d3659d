package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"allocate/internal/common"
	"allocate/internal/memory"
	"allocate/internal/processmanager"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HTTPServer 模拟状态 HTTP 服务器，只读地暴露一次运行的内部状态
type HTTPServer struct {
	server *http.Server
	logger *zap.Logger
	pm     ManagerInterface
}

// ManagerInterface 定义状态服务需要的进程管理器接口
type ManagerInterface interface {
	RunID() string
	Clock() uint32
	PendingCount() uint32
	Snapshot() []processmanager.ProcessSnapshot
	MemorySnapshot() []memory.Block
	Report() processmanager.Report
}

// NewHTTPServer 创建新的状态服务器
func NewHTTPServer(pm ManagerInterface, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		pm:     pm,
		logger: logger,
	}
}

// Start 启动状态服务器
func (s *HTTPServer) Start(port int) error {
	router := mux.NewRouter()

	// 添加中间件
	router.Use(s.loggingMiddleware)
	router.Use(s.corsMiddleware)

	// API 路由
	v1 := router.PathPrefix("/ws/v1").Subrouter()
	sim := v1.PathPrefix("/sim").Subrouter()

	sim.HandleFunc("/info", s.handleInfo).Methods("GET")
	sim.HandleFunc("/processes", s.handleProcesses).Methods("GET")
	sim.HandleFunc("/processes/{name}", s.handleProcess).Methods("GET")
	sim.HandleFunc("/memory", s.handleMemory).Methods("GET")
	sim.HandleFunc("/report", s.handleReport).Methods("GET")
	sim.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 在后台启动服务器
	go func() {
		s.logger.Info("starting status server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("status server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop 停止状态服务器
func (s *HTTPServer) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("stopping status server")
	return s.server.Shutdown(ctx)
}

// handleInfo 处理运行信息请求
func (s *HTTPServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"run_id":        s.pm.RunID(),
		"clock":         s.pm.Clock(),
		"pending_count": s.pm.PendingCount(),
		"timestamp":     time.Now().Format(time.RFC3339),
	}

	s.writeJSONResponse(w, map[string]interface{}{
		"simInfo": info,
	})
}

// handleProcesses 处理进程列表请求
func (s *HTTPServer) handleProcesses(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, map[string]interface{}{
		"processes": s.pm.Snapshot(),
	})
}

// handleProcess 处理单个进程请求
func (s *HTTPServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	for _, snapshot := range s.pm.Snapshot() {
		if snapshot.Name == name {
			s.writeJSONResponse(w, snapshot)
			return
		}
	}
	http.Error(w, "process not found", http.StatusNotFound)
}

// handleMemory 处理空闲内存请求
func (s *HTTPServer) handleMemory(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, map[string]interface{}{
		"free_blocks": s.pm.MemorySnapshot(),
	})
}

// handleReport 处理统计报告请求
func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, s.pm.Report())
}

// handleMetrics 处理指标请求
func (s *HTTPServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, common.GetMetrics().GetSnapshot())
}

// loggingMiddleware 日志中间件
func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// corsMiddleware CORS 中间件
func (s *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSONResponse 写入 JSON 响应
func (s *HTTPServer) writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
