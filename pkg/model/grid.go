// Package model 定义排班优化引擎的核心数据模型
package model

// TimeGridConfig 时间网格配置
// 规划范围从 StartDate 起共 Days 天，每天按 BucketMinutes 分钟切分时段
type TimeGridConfig struct {
	StartDate     string `json:"start_date"`     // YYYY-MM-DD
	Days          int    `json:"days"`           // 规划天数
	BucketMinutes int    `json:"bucket_minutes"` // 时段长度（分钟），必须整除1440
}

// BucketsPerDay 返回每天的时段数
func (c TimeGridConfig) BucketsPerDay() int {
	return 24 * 60 / c.BucketMinutes
}

// Slot 时段坐标 (天下标, 天内时段下标)
type Slot struct {
	Day    int `json:"day_index"`
	Bucket int `json:"bucket_index"`
}

// SlotKey 时段+技能组复合键
type SlotKey struct {
	Day        int
	Bucket     int
	SkillGroup string
}
