// Package model 定义排班优化引擎的核心数据模型
package model

// Employee 员工
type Employee struct {
	ID                string   `json:"id"`
	Name              string   `json:"name,omitempty"`
	EmploymentGroupID string   `json:"employment_group_id"`
	SkillGroupIDs     []string `json:"skill_group_ids"` // 持证技能组（多技能）
}

// HasSkillGroup 检查员工是否持有某技能组
func (e *Employee) HasSkillGroup(skillGroupID string) bool {
	for _, sg := range e.SkillGroupIDs {
		if sg == skillGroupID {
			return true
		}
	}
	return false
}

// HourBounds 工时上下界（小时）
type HourBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EmploymentGroup 用工组，约束日工时与周工时
type EmploymentGroup struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	HoursPerDay  HourBounds `json:"hours_per_day"`
	HoursPerWeek HourBounds `json:"hours_per_week"`
}
