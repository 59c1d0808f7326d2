// Package model 定义排班优化引擎的核心数据模型
package model

// PriorityEntry 优先级窗口内的单条流向声明
// UnderstaffWeight 为空时按 Rank 查默认权重阶梯
type PriorityEntry struct {
	Direction        string   `json:"direction"`
	Channel          string   `json:"channel"`
	Rank             int      `json:"rank"`
	UnderstaffWeight *float64 `json:"understaff_weight,omitempty"`
}

// Stream 返回声明所属的需求流
func (p PriorityEntry) Stream() Stream {
	return Stream{Direction: p.Direction, Channel: p.Channel}
}

// PriorityRule 按时间窗口生效的优先级规则
// AppliesToDays 为空表示每天生效
type PriorityRule struct {
	StartTimeLocal string          `json:"start_time_local"` // HH:MM
	EndTimeLocal   string          `json:"end_time_local"`   // HH:MM
	AppliesToDays  []string        `json:"applies_to_days,omitempty"` // mon..sun
	Priorities     []PriorityEntry `json:"priorities"`
}
