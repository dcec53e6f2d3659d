package processmanager

import (
	"fmt"
	"io"
	"sync"
)

// EventType 模拟事件类型
type EventType string

const (
	EventReady        EventType = "READY"
	EventRunning      EventType = "RUNNING"
	EventFinished     EventType = "FINISHED"
	EventFinishedHash EventType = "FINISHED-PROCESS"
)

// Event 模拟事件
type Event struct {
	Clock         uint32    `json:"clock"`
	Type          EventType `json:"type"`
	Process       string    `json:"process"`
	AssignedAt    uint32    `json:"assigned_at,omitempty"`
	RemainingTime uint32    `json:"remaining_time,omitempty"`
	PendingCount  uint32    `json:"pending_count,omitempty"`
	Hash          string    `json:"hash,omitempty"`
}

// Listener 模拟事件监听器
type Listener interface {
	OnEvent(event Event)
}

// EventDispatcher 事件分发器，同步通知所有监听器
type EventDispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEventDispatcher 创建事件分发器
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

// AddListener 注册事件监听器
func (d *EventDispatcher) AddListener(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, listener)
}

// Dispatch 分发事件
func (d *EventDispatcher) Dispatch(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, listener := range d.listeners {
		listener.OnEvent(event)
	}
}

// ConsoleListener 将事件按执行记录格式逐行写出
type ConsoleListener struct {
	w io.Writer
}

// NewConsoleListener 创建执行记录输出监听器
func NewConsoleListener(w io.Writer) *ConsoleListener {
	return &ConsoleListener{w: w}
}

// OnEvent 输出一行执行记录
func (c *ConsoleListener) OnEvent(event Event) {
	switch event.Type {
	case EventReady:
		fmt.Fprintf(c.w, "%d,READY,process_name=%s,assigned_at=%d\n",
			event.Clock, event.Process, event.AssignedAt)
	case EventRunning:
		fmt.Fprintf(c.w, "%d,RUNNING,process_name=%s,remaining_time=%d\n",
			event.Clock, event.Process, event.RemainingTime)
	case EventFinished:
		fmt.Fprintf(c.w, "%d,FINISHED,process_name=%s,proc_remaining=%d\n",
			event.Clock, event.Process, event.PendingCount)
	case EventFinishedHash:
		fmt.Fprintf(c.w, "%d,FINISHED-PROCESS,process_name=%s,sha=%s\n",
			event.Clock, event.Process, event.Hash)
	}
}
