package jobfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"allocate/internal/common"
)

// Parse 解析行式作业输入：每行 `到达时间 名称 服务时间 所需内存`，
// 读到输入结束为止。空行被跳过，格式错误的行返回错误
func Parse(r io.Reader) ([]*common.Program, error) {
	var programs []*common.Program

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: expected 4 fields, got %d", lineNo, len(fields))
		}

		arrival, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid arrival time %q: %w", lineNo, fields[0], err)
		}
		service, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid service time %q: %w", lineNo, fields[2], err)
		}
		memoryRequired, err := strconv.ParseUint(fields[3], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid memory requirement %q: %w", lineNo, fields[3], err)
		}

		program := &common.Program{
			Name:           fields[1],
			ArrivalTime:    uint32(arrival),
			ServiceTime:    uint32(service),
			MemoryRequired: uint16(memoryRequired),
		}
		if err := common.ValidateProgram(program); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		programs = append(programs, program)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	return programs, nil
}

// ParseFile 从文件解析作业列表
func ParseFile(path string) ([]*common.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jobs %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}
