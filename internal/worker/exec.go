package worker

import (
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"allocate/internal/common"

	"go.uber.org/zap"
)

// ExecLauncher 通过真实操作系统进程运行作业
type ExecLauncher struct {
	command string
	logger  *zap.Logger
}

// NewExecLauncher 创建真实进程启动器，command 为工作进程可执行文件路径
func NewExecLauncher(command string) *ExecLauncher {
	return &ExecLauncher{
		command: command,
		logger:  common.ComponentLogger("worker"),
	}
}

// Launch 以作业名称为参数生成工作进程，建立两条管道并完成启动握手
func (l *ExecLauncher) Launch(name string, clock uint32) (Handle, error) {
	cmd := exec.Command(l.command, name)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", common.ErrWorkerSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", common.ErrWorkerSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", common.ErrWorkerSpawn, l.command, err)
	}

	l.logger.Debug("worker spawned",
		zap.String("name", name),
		zap.Int("pid", cmd.Process.Pid))

	h := &execHandle{
		name:   name,
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		logger: l.logger,
	}

	sent, err := writeClock(h.stdin, clock)
	if err != nil {
		return nil, err
	}
	if err := verifyEcho(h.stdout, sent); err != nil {
		return nil, err
	}
	return h, nil
}

// execHandle 真实工作进程句柄
type execHandle struct {
	name   string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *zap.Logger
}

// Suspend 发送时钟后以 SIGTSTP 通知工作进程停止，阻塞等待其进入停止状态
func (h *execHandle) Suspend(clock uint32) error {
	h.logger.Debug("suspending worker", zap.String("name", h.name))

	if _, err := writeClock(h.stdin, clock); err != nil {
		return err
	}
	if err := h.cmd.Process.Signal(syscall.SIGTSTP); err != nil {
		return fmt.Errorf("%w: signal SIGTSTP: %v", common.ErrProtocolFailure, err)
	}
	return h.waitStopped()
}

// waitStopped 阻塞直到工作进程报告停止状态；
// 在期望停止时观察到退出或被信号杀死是协议错误
func (h *execHandle) waitStopped() error {
	var status syscall.WaitStatus
	for {
		_, err := syscall.Wait4(h.cmd.Process.Pid, &status, syscall.WUNTRACED, nil)
		if err != nil {
			return fmt.Errorf("%w: wait4: %v", common.ErrProtocolFailure, err)
		}
		if status.Stopped() {
			return nil
		}
		if status.Exited() || status.Signaled() {
			return fmt.Errorf("%w: %s exited while a stop was expected",
				common.ErrWorkerExited, h.name)
		}
	}
}

// Resume 发送时钟后以 SIGCONT 通知工作进程继续，并做回显校验
func (h *execHandle) Resume(clock uint32) error {
	h.logger.Debug("continuing worker", zap.String("name", h.name))

	sent, err := writeClock(h.stdin, clock)
	if err != nil {
		return err
	}
	if err := h.cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return fmt.Errorf("%w: signal SIGCONT: %v", common.ErrProtocolFailure, err)
	}
	return verifyEcho(h.stdout, sent)
}

// Terminate 发送时钟后以 SIGTERM 终止工作进程，
// 读取完成哈希并关闭两条通道，最后回收子进程
func (h *execHandle) Terminate(clock uint32) ([]byte, error) {
	h.logger.Debug("terminating worker", zap.String("name", h.name))

	if _, err := writeClock(h.stdin, clock); err != nil {
		return nil, err
	}
	if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return nil, fmt.Errorf("%w: signal SIGTERM: %v", common.ErrProtocolFailure, err)
	}

	hash, err := readHash(h.stdout)
	if err != nil {
		return nil, err
	}

	_ = h.stdin.Close()
	// 工作进程可能因信号以非零状态退出，这里只负责回收
	_ = h.cmd.Wait()

	return hash, nil
}

// Pid 返回工作进程的进程号
func (h *execHandle) Pid() int {
	return h.cmd.Process.Pid
}
