// Package model 定义排班优化引擎的核心数据模型
package model

// Assignment 班次分配结果：员工在某天被指派某个班次模板
type Assignment struct {
	EmployeeID        string `json:"employee_id"`
	DayIndex          int    `json:"day_index"`
	EmploymentGroupID string `json:"employment_group_id"`
	ShiftTemplateID   string `json:"shift_template_id"`
}

// Allocation 技能分配结果：员工在某时段被分配到某技能组
type Allocation struct {
	EmployeeID   string `json:"employee_id"`
	DayIndex     int    `json:"day_index"`
	BucketIndex  int    `json:"bucket_index"`
	SkillGroupID string `json:"skill_group_id"`
}

// UnderstaffEntry 缺员记录（稀疏，仅含缺员为正的时段）
type UnderstaffEntry struct {
	DayIndex     int     `json:"day_index"`
	BucketIndex  int     `json:"bucket_index"`
	SkillGroupID string  `json:"skill_group_id"`
	Direction    string  `json:"direction"`
	Channel      string  `json:"channel"`
	Required     int     `json:"required"`
	Understaff   float64 `json:"understaff"`
	Weight       float64 `json:"weight"`
}

// CoverageEntry 覆盖表记录（稠密，含零值）
type CoverageEntry struct {
	DayIndex     int     `json:"day_index"`
	BucketIndex  int     `json:"bucket_index"`
	SkillGroupID string  `json:"skill_group_id"`
	Direction    string  `json:"direction"`
	Channel      string  `json:"channel"`
	Required     int     `json:"required"`
	Allocated    float64 `json:"allocated"`
	Understaff   float64 `json:"understaff"`
	Weight       float64 `json:"weight"`
}

// Warning 非致命问题告警
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ModelSize 求解模型的规模
type ModelSize struct {
	Variables   int `json:"variables"`
	Constraints int `json:"constraints"`
}

// Solution 一次规划运行的完整输出
type Solution struct {
	Status          string            `json:"status"`
	ObjectiveValue  float64           `json:"objective_value"`
	TotalUnderstaff float64           `json:"total_understaff"`
	Model           ModelSize         `json:"model"`
	Assignments     []Assignment      `json:"employee_shifts"`
	Allocations     []Allocation      `json:"employee_allocation"`
	Understaff      []UnderstaffEntry `json:"understaff"`
	Coverage        []CoverageEntry   `json:"coverage"`
	Warnings        []Warning         `json:"warnings,omitempty"`
}
