package common

import (
	"errors"
	"fmt"
)

// 定义常见错误类型
var (
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrInvalidState         = errors.New("invalid state")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrProtocolFailure      = errors.New("worker protocol failure")
	ErrWorkerSpawn          = errors.New("worker spawn failure")
	ErrWorkerExited         = errors.New("unexpected worker exit")
)

// SimulationError 自定义错误类型
type SimulationError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e *SimulationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *SimulationError) Unwrap() error {
	return e.Cause
}

// NewSimulationError 创建新的模拟器错误
func NewSimulationError(errorType, message, details string) *SimulationError {
	return &SimulationError{
		Type:    errorType,
		Message: message,
		Details: details,
	}
}

// ValidationError 验证错误
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// NewValidationError 创建验证错误
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ValidateProgram 验证作业描述
func ValidateProgram(p *Program) error {
	if p == nil {
		return NewValidationError("program", "cannot be nil", nil)
	}
	if p.Name == "" {
		return NewValidationError("name", "cannot be empty", p.Name)
	}
	if len(p.Name) > MaxProgramNameLen {
		return NewValidationError("name", fmt.Sprintf("exceeds maximum length (%d)", MaxProgramNameLen), p.Name)
	}
	if p.ServiceTime == 0 {
		return NewValidationError("service_time", "must be greater than 0", p.ServiceTime)
	}
	return nil
}

// ValidateSchedulerType 验证调度器类型
func ValidateSchedulerType(schedulerType string) error {
	switch schedulerType {
	case SchedulerSJF, SchedulerRR:
		return nil
	default:
		return NewValidationError("scheduler.type", "must be one of sjf, rr", schedulerType)
	}
}

// ValidateMemoryStrategy 验证内存分配策略
func ValidateMemoryStrategy(strategy string) error {
	switch strategy {
	case MemoryInfinite, MemoryBestFit:
		return nil
	default:
		return NewValidationError("memory.strategy", "must be one of infinite, best-fit", strategy)
	}
}
