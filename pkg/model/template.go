// Package model 定义排班优化引擎的核心数据模型
package model

// TemplateKind 班次模板形态
type TemplateKind int

const (
	TemplateInvalid  TemplateKind = iota // 既无时长也无工作模式
	TemplateDuration                     // 连续工作，由时长描述
	TemplatePattern                      // 显式0/1工作模式
)

// ShiftTemplate 班次模板
// DurationMinutes 与 BucketWorkPattern 互斥，描述同一件事：相对起点哪些时段在工作
type ShiftTemplate struct {
	ID                string `json:"id"`
	Name              string `json:"name,omitempty"`
	StartTimeLocal    string `json:"start_time_local"`             // HH:MM
	DurationMinutes   int    `json:"duration_minutes,omitempty"`   // 连续工作时长（分钟）
	BucketWorkPattern []int  `json:"bucket_work_pattern,omitempty"` // 相对起点的0/1标志序列
}

// Kind 返回模板形态
func (t *ShiftTemplate) Kind() TemplateKind {
	hasDuration := t.DurationMinutes > 0
	hasPattern := len(t.BucketWorkPattern) > 0
	switch {
	case hasDuration && !hasPattern:
		return TemplateDuration
	case hasPattern && !hasDuration:
		return TemplatePattern
	default:
		return TemplateInvalid
	}
}

// WorkedMinutes 返回模板的实际工作分钟数
// 时长模板为 DurationMinutes；模式模板为标志为1的时段数 × 时段长度
func (t *ShiftTemplate) WorkedMinutes(bucketMinutes int) int {
	if t.Kind() == TemplatePattern {
		worked := 0
		for _, v := range t.BucketWorkPattern {
			if v == 1 {
				worked++
			}
		}
		return worked * bucketMinutes
	}
	return t.DurationMinutes
}

// WorkedHours 返回模板的实际工作小时数
func (t *ShiftTemplate) WorkedHours(bucketMinutes int) float64 {
	return float64(t.WorkedMinutes(bucketMinutes)) / 60.0
}
