package worker

import (
	"encoding/binary"
	"fmt"
	"io"

	"allocate/internal/common"
)

// HashSize 工作进程终止时回传的完成哈希长度（字节）
const HashSize = 64

// Handle 一个已启动工作进程的能力句柄。
// 所有操作从管理端看都是同步阻塞的，直到工作进程确认状态变化为止
type Handle interface {
	// Suspend 发送当前时钟并让工作进程停止，阻塞直到其报告已停止
	Suspend(clock uint32) error

	// Resume 发送当前时钟并让工作进程继续，执行与启动相同的回显校验
	Resume(clock uint32) error

	// Terminate 发送当前时钟并终止工作进程，读取完成哈希后关闭两条通道
	Terminate(clock uint32) ([]byte, error)

	// Pid 返回工作进程标识
	Pid() int
}

// Launcher 负责生成工作进程并完成首次启动握手
type Launcher interface {
	Launch(name string, clock uint32) (Handle, error)
}

// writeClock 将时钟以大端序写入管理端到工作端的通道，
// 循环写直到 4 字节全部送出，返回实际发送的最低位字节
func writeClock(w io.Writer, clock uint32) (byte, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], clock)

	remaining := buf[:]
	for len(remaining) > 0 {
		n, err := w.Write(remaining)
		if err != nil {
			return 0, fmt.Errorf("%w: write clock: %v", common.ErrProtocolFailure, err)
		}
		remaining = remaining[n:]
	}
	return buf[3], nil
}

// verifyEcho 读取工作进程回显的单个字节并与发送的最低位字节比对，
// 不一致视为不可恢复的协议失败
func verifyEcho(r io.Reader, sent byte) error {
	var echo [1]byte
	if _, err := io.ReadFull(r, echo[:]); err != nil {
		return fmt.Errorf("%w: read echo: %v", common.ErrProtocolFailure, err)
	}
	if echo[0] != sent {
		return fmt.Errorf("%w: echo mismatch: sent 0x%02x, got 0x%02x",
			common.ErrProtocolFailure, sent, echo[0])
	}
	return nil
}

// readHash 从工作端到管理端的通道读取定长完成哈希
func readHash(r io.Reader) ([]byte, error) {
	hash := make([]byte, HashSize)
	if _, err := io.ReadFull(r, hash); err != nil {
		return nil, fmt.Errorf("%w: read hash: %v", common.ErrProtocolFailure, err)
	}
	return hash, nil
}
