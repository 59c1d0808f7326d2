// Package mip 提供混合整数规划的模型容器与求解器适配
package mip

import (
	"math"
)

// VarKind 变量类型
type VarKind int

const (
	Binary     VarKind = iota // 0/1变量
	Continuous                // 连续变量
)

// Var 决策变量
// 以小整数ID作为主键，名字仅用于求解器交换文件和调试
type Var struct {
	ID   int
	Name string
	Kind VarKind
	Lb   float64
	Ub   float64
}

// Term 线性项
type Term struct {
	Var  int
	Coef float64
}

// Expr 线性表达式
type Expr []Term

// Add 追加一项并返回新表达式
func (e Expr) Add(varID int, coef float64) Expr {
	return append(e, Term{Var: varID, Coef: coef})
}

// Eval 按变量取值计算表达式值
func (e Expr) Eval(values []float64) float64 {
	sum := 0.0
	for _, t := range e {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

// Sense 约束方向
type Sense int

const (
	LE Sense = iota // <=
	GE              // >=
	EQ              // ==
)

// Constraint 线性约束 expr (sense) rhs
type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Satisfied 检查约束在给定取值下是否满足
func (c *Constraint) Satisfied(values []float64, tol float64) bool {
	lhs := c.Expr.Eval(values)
	switch c.Sense {
	case LE:
		return lhs <= c.RHS+tol
	case GE:
		return lhs >= c.RHS-tol
	default:
		return math.Abs(lhs-c.RHS) <= tol
	}
}

// Model 混合整数规划模型
type Model struct {
	Name        string
	vars        []Var
	constraints []Constraint
	objective   Expr
	minimize    bool
}

// NewModel 创建空模型
func NewModel(name string) *Model {
	return &Model{Name: name, minimize: true}
}

// AddBinary 添加0/1变量，返回变量ID
func (m *Model) AddBinary(name string) int {
	id := len(m.vars)
	m.vars = append(m.vars, Var{ID: id, Name: name, Kind: Binary, Lb: 0, Ub: 1})
	return id
}

// AddContinuous 添加连续变量，返回变量ID
// ub 传 math.Inf(1) 表示无上界
func (m *Model) AddContinuous(name string, lb, ub float64) int {
	id := len(m.vars)
	m.vars = append(m.vars, Var{ID: id, Name: name, Kind: Continuous, Lb: lb, Ub: ub})
	return id
}

// AddConstraint 添加线性约束
// 无任何项的约束是空约束，直接忽略（调用方保证其平凡可满足）
func (m *Model) AddConstraint(name string, expr Expr, sense Sense, rhs float64) {
	if len(expr) == 0 {
		return
	}
	m.constraints = append(m.constraints, Constraint{Name: name, Expr: expr, Sense: sense, RHS: rhs})
}

// SetMinimize 设置最小化目标
func (m *Model) SetMinimize(obj Expr) {
	m.objective = obj
	m.minimize = true
}

// Vars 返回变量列表
func (m *Model) Vars() []Var {
	return m.vars
}

// Constraints 返回约束列表
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// Objective 返回目标表达式
func (m *Model) Objective() Expr {
	return m.objective
}

// IsMinimize 是否为最小化问题
func (m *Model) IsMinimize() bool {
	return m.minimize
}

// NumVars 变量总数
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumBinaries 0/1变量总数
func (m *Model) NumBinaries() int {
	n := 0
	for _, v := range m.vars {
		if v.Kind == Binary {
			n++
		}
	}
	return n
}

// NumConstraints 约束总数
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}
