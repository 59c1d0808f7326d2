// Package mip 提供混合整数规划的模型容器与求解器适配
package mip

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shiftopt/shiftopt/pkg/logger"
)

// CBCSolver 通过 CBC 命令行求解
// 模型以LP文件写入工作目录，解析 CBC 输出的解文件读回变量取值
type CBCSolver struct {
	BinPath   string // cbc 可执行文件路径
	WorkDir   string // 交换文件目录，空则使用系统临时目录
	KeepFiles bool   // 保留交换文件（调试用）
	Quiet     bool   // 抑制求解器输出
}

// NewCBCSolver 创建CBC求解器
func NewCBCSolver(binPath string) *CBCSolver {
	if binPath == "" {
		binPath = "cbc"
	}
	return &CBCSolver{BinPath: binPath, Quiet: true}
}

// Name 返回求解器名称
func (s *CBCSolver) Name() string {
	return "CBCSolver"
}

// Solve 求解模型
func (s *CBCSolver) Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	start := time.Now()

	dir := s.WorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "shiftopt-cbc-")
		if err != nil {
			return nil, fmt.Errorf("创建求解器工作目录失败: %w", err)
		}
		dir = tmp
		if !s.KeepFiles {
			defer os.RemoveAll(tmp)
		}
	}

	lpPath := filepath.Join(dir, "model.lp")
	solPath := filepath.Join(dir, "model.sol")

	f, err := os.Create(lpPath)
	if err != nil {
		return nil, fmt.Errorf("写入LP文件失败: %w", err)
	}
	if err := WriteLP(m, f); err != nil {
		f.Close()
		return nil, fmt.Errorf("写入LP文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("写入LP文件失败: %w", err)
	}

	args := []string{lpPath}
	if opts.TimeLimit > 0 {
		args = append(args, "sec", strconv.FormatFloat(opts.TimeLimit.Seconds(), 'f', -1, 64))
	}
	if opts.RelativeGap > 0 {
		args = append(args, "ratio", strconv.FormatFloat(opts.RelativeGap, 'f', -1, 64))
	}
	args = append(args, "branch", "printingOptions", "all", "solution", solPath)

	cmd := exec.CommandContext(ctx, s.BinPath, args...)
	if !s.Quiet {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	logger.Debug().
		Str("solver", s.Name()).
		Str("lp", lpPath).
		Int("variables", m.NumVars()).
		Int("constraints", m.NumConstraints()).
		Msg("调用外部求解器")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// CBC 对不可行模型也可能返回非零退出码，先尝试读解文件
		if _, statErr := os.Stat(solPath); statErr != nil {
			return nil, fmt.Errorf("求解器执行失败: %w", err)
		}
	}

	sol, err := parseCBCSolution(m, solPath)
	if err != nil {
		return nil, err
	}
	sol.Duration = time.Since(start)
	return sol, nil
}

// parseCBCSolution 解析CBC解文件
// 首行为状态与目标值，其余行为 "序号 变量名 取值 检验数"
func parseCBCSolution(m *Model, path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取解文件失败: %w", err)
	}
	defer f.Close()

	nameToID := make(map[string]int, m.NumVars())
	for _, v := range m.Vars() {
		nameToID[lpVarName(m, v.ID)] = v.ID
	}

	sol := &Solution{Status: StatusError}
	values := make([]float64, m.NumVars())

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			sol.Status = cbcStatus(line)
			if idx := strings.Index(line, "objective value"); idx >= 0 {
				rest := strings.TrimSpace(line[idx+len("objective value"):])
				if obj, err := strconv.ParseFloat(strings.Fields(rest)[0], 64); err == nil {
					sol.Objective = obj
				}
			}
			continue
		}
		// 不可行时变量行带 "**" 前缀
		line = strings.TrimPrefix(line, "**")
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		id, ok := nameToID[fields[1]]
		if !ok {
			continue
		}
		val, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		values[id] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取解文件失败: %w", err)
	}

	if sol.Status.Usable() {
		sol.Values = values
	}
	return sol, nil
}

// cbcStatus 映射CBC状态行到统一状态
func cbcStatus(line string) Status {
	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return StatusOptimal
	case strings.HasPrefix(lower, "infeasible"):
		return StatusInfeasible
	case strings.HasPrefix(lower, "unbounded"):
		return StatusUnbounded
	case strings.Contains(lower, "time") && strings.HasPrefix(lower, "stopped"):
		return StatusTimedOut
	case strings.HasPrefix(lower, "stopped"):
		// 达到间隙等其他软停条件，解仍可用
		return StatusFeasible
	default:
		return StatusError
	}
}
