package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// readClock 从标准输入读取 4 字节大端时钟值并记录到摘要中
func readClock(r io.Reader, digest io.Writer) (byte, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read clock: %w", err)
	}
	digest.Write(buf[:])
	return buf[3], nil
}

// echo 将时钟低位字节回写到标准输出
func echo(w io.Writer, b byte) error {
	if _, err := w.Write([]byte{b}); err != nil {
		return fmt.Errorf("write echo: %w", err)
	}
	return nil
}

func main() {
	verbose := flag.Bool("v", false, "Log received signals to stderr")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: process [-v] <name>")
		os.Exit(1)
	}
	name := flag.Arg(0)

	// 终止时的哈希覆盖进程名与收到的全部时钟字节
	digest := sha256.New()
	digest.Write([]byte(name))

	// 启动握手：读取初始时钟并回显低位字节
	b, err := readClock(os.Stdin, digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
	if err := echo(os.Stdout, b); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTSTP, syscall.SIGCONT, syscall.SIGTERM)

	for sig := range sigChan {
		if *verbose {
			fmt.Fprintf(os.Stderr, "%s: received %v\n", name, sig)
		}
		switch sig {
		case syscall.SIGTSTP:
			// 挂起：读取挂起时刻后自行停止，等待 SIGCONT 恢复
			if _, err := readClock(os.Stdin, digest); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
			if err := syscall.Kill(syscall.Getpid(), syscall.SIGSTOP); err != nil {
				fmt.Fprintf(os.Stderr, "%s: stop: %v\n", name, err)
				os.Exit(1)
			}
		case syscall.SIGCONT:
			// 恢复：读取恢复时刻并回显低位字节
			b, err := readClock(os.Stdin, digest)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
			if err := echo(os.Stdout, b); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
		case syscall.SIGTERM:
			// 终止：读取终止时刻，输出 64 字符十六进制哈希后退出
			if _, err := readClock(os.Stdin, digest); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
			if _, err := os.Stdout.WriteString(hex.EncodeToString(digest.Sum(nil))); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
			os.Exit(0)
		}
	}
}
