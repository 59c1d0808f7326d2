// Package mip 提供混合整数规划的模型容器与求解器适配
package mip

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
)

// WriteLP 以CPLEX LP格式写出模型
// 变量名中的非法字符统一替换为下划线，替换后以ID保证唯一
func WriteLP(m *Model, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ %s\n", m.Name)
	fmt.Fprintln(bw, "Minimize")

	obj := m.Objective()
	if len(obj) == 0 && m.NumVars() > 0 {
		// LP格式不允许空目标，写一个零系数占位
		fmt.Fprintf(bw, " obj: 0 %s\n", lpVarName(m, 0))
	} else {
		fmt.Fprintf(bw, " obj:%s\n", lpExpr(m, obj))
	}

	fmt.Fprintln(bw, "Subject To")
	for i := range m.Constraints() {
		c := &m.Constraints()[i]
		fmt.Fprintf(bw, " %s:%s %s %s\n",
			sanitizeLPName(c.Name), lpExpr(m, c.Expr), lpSense(c.Sense), trimFloat(c.RHS))
	}

	// 连续变量的边界；0/1变量由 Binaries 段声明
	fmt.Fprintln(bw, "Bounds")
	for _, v := range m.Vars() {
		if v.Kind != Continuous {
			continue
		}
		name := lpVarName(m, v.ID)
		if math.IsInf(v.Ub, 1) {
			fmt.Fprintf(bw, " %s >= %s\n", name, trimFloat(v.Lb))
		} else {
			fmt.Fprintf(bw, " %s <= %s <= %s\n", trimFloat(v.Lb), name, trimFloat(v.Ub))
		}
	}

	hasBinary := false
	for _, v := range m.Vars() {
		if v.Kind == Binary {
			hasBinary = true
			break
		}
	}
	if hasBinary {
		fmt.Fprintln(bw, "Binaries")
		line := " "
		for _, v := range m.Vars() {
			if v.Kind != Binary {
				continue
			}
			name := lpVarName(m, v.ID)
			if len(line)+len(name)+1 > 255 {
				fmt.Fprintln(bw, line)
				line = " "
			}
			line += " " + name
		}
		if strings.TrimSpace(line) != "" {
			fmt.Fprintln(bw, line)
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

// lpExpr 格式化线性表达式
func lpExpr(m *Model, e Expr) string {
	var sb strings.Builder
	wrote := false
	for _, t := range e {
		if t.Coef == 0 {
			continue
		}
		coef := t.Coef
		if wrote {
			if coef >= 0 {
				sb.WriteString(" +")
			} else {
				sb.WriteString(" -")
				coef = -coef
			}
		} else {
			if coef < 0 {
				sb.WriteString(" -")
				coef = -coef
			} else {
				sb.WriteString(" ")
			}
			wrote = true
		}
		sb.WriteString(" ")
		sb.WriteString(trimFloat(coef))
		sb.WriteString(" ")
		sb.WriteString(lpVarName(m, t.Var))
	}
	if !wrote {
		return " 0"
	}
	return sb.String()
}

// lpVarName 返回变量的LP文件名
func lpVarName(m *Model, id int) string {
	return fmt.Sprintf("%s_%d", sanitizeLPName(m.Vars()[id].Name), id)
}

// sanitizeLPName 清理LP格式不允许的字符
func sanitizeLPName(name string) string {
	if name == "" {
		return "x"
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	// LP格式变量名不能以数字开头
	if out[0] >= '0' && out[0] <= '9' {
		out = "x" + out
	}
	return out
}

// lpSense 格式化约束方向
func lpSense(s Sense) string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "="
	}
}

// trimFloat 去掉多余的小数零
func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}
