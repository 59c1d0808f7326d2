// Package model 定义排班优化引擎的核心数据模型
package model

// SolverOptions 求解器软停条件
// 时间限制与相对间隙都是软性停止条件，达到后返回当前可行解而非报错
type SolverOptions struct {
	TimeLimitSeconds *float64 `json:"time_limit_seconds,omitempty"`
	MIPGap           *float64 `json:"mip_gap,omitempty"`
}

// Input 一次规划运行的完整输入
// 结构合法性由外部校验器保证，这里只做语义校验
type Input struct {
	Time             TimeGridConfig    `json:"time"`
	SkillGroups      []SkillGroup      `json:"skill_groups"`
	Employees        []Employee        `json:"employees"`
	EmploymentGroups []EmploymentGroup `json:"employment_groups"`
	ShiftTemplates   []ShiftTemplate   `json:"shift_templates"`
	Forecast         []ForecastRow     `json:"forecast"`
	PriorityRules    []PriorityRule    `json:"priority_rules,omitempty"`
	OperatingHours   []OperatingHours  `json:"operating_hours,omitempty"`
	Solver           SolverOptions     `json:"solver,omitempty"`
}

// SkillGroupByID 按ID查找技能组
func (in *Input) SkillGroupByID(id string) *SkillGroup {
	for i := range in.SkillGroups {
		if in.SkillGroups[i].ID == id {
			return &in.SkillGroups[i]
		}
	}
	return nil
}

// EmploymentGroupByID 按ID查找用工组
func (in *Input) EmploymentGroupByID(id string) *EmploymentGroup {
	for i := range in.EmploymentGroups {
		if in.EmploymentGroups[i].ID == id {
			return &in.EmploymentGroups[i]
		}
	}
	return nil
}
