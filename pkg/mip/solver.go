// Package mip 提供混合整数规划的模型容器与求解器适配
package mip

import (
	"context"
	"time"
)

// Status 求解状态
type Status string

const (
	StatusOptimal    Status = "Optimal"    // 最优解
	StatusFeasible   Status = "Feasible"   // 可行但未证明最优
	StatusInfeasible Status = "Infeasible" // 无可行解
	StatusUnbounded  Status = "Unbounded"  // 无界
	StatusTimedOut   Status = "TimedOut"   // 达到时间限制
	StatusError      Status = "Error"      // 求解器错误
)

// Usable 检查该状态下是否存在可读取的变量取值
// 时间限制内找到的可行解同样是合法结果，不视为失败
func (s Status) Usable() bool {
	return s == StatusOptimal || s == StatusFeasible || s == StatusTimedOut
}

// Options 求解选项（软停条件）
type Options struct {
	TimeLimit   time.Duration `json:"time_limit,omitempty"`   // 0 表示不限时
	RelativeGap float64       `json:"relative_gap,omitempty"` // <=0 表示不设间隙
}

// Solution 求解结果
// Values 按变量ID索引；状态不可用时 Values 为 nil
type Solution struct {
	Status    Status        `json:"status"`
	Objective float64       `json:"objective"`
	Values    []float64     `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// Value 返回变量取值（无解时为0）
func (s *Solution) Value(varID int) float64 {
	if s.Values == nil || varID < 0 || varID >= len(s.Values) {
		return 0
	}
	return s.Values[varID]
}

// Solver 求解器接口
// 模型构建完成后整体交给求解器，阻塞直到完成或达到软停条件
type Solver interface {
	// Solve 求解模型
	Solve(ctx context.Context, m *Model, opts Options) (*Solution, error)

	// Name 返回求解器名称
	Name() string
}
