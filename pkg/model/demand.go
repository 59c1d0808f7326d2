// Package model 定义排班优化引擎的核心数据模型
package model

// Stream 需求流，由方向和渠道唯一标识
type Stream struct {
	Direction string `json:"direction"` // inbound/outbound
	Channel   string `json:"channel"`   // voice/chat/email...
}

// Key 返回需求流的字符串键
func (s Stream) Key() string {
	return s.Direction + ":" + s.Channel
}

// IsZero 检查需求流是否为空
func (s Stream) IsZero() bool {
	return s.Direction == "" && s.Channel == ""
}

// SkillGroup 技能组
// Direction/Channel 为可选的显式流向声明；为空时流向从预测数据中推断
type SkillGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Direction string `json:"direction,omitempty"`
	Channel   string `json:"channel,omitempty"`
}

// DeclaredStream 返回显式声明的流向（未声明时 IsZero 为真）
func (sg SkillGroup) DeclaredStream() Stream {
	return Stream{Direction: sg.Direction, Channel: sg.Channel}
}

// ForecastRow 原始预测记录
type ForecastRow struct {
	SkillGroupID   string `json:"skill_group_id"`
	TimestampLocal string `json:"timestamp_local"` // DD-MON-YYYY HH24:MI:SS
	Direction      string `json:"direction"`
	Channel        string `json:"channel"`
	Agents         int    `json:"agents"`
}

// Stream 返回该预测行所属的需求流
func (r ForecastRow) Stream() Stream {
	return Stream{Direction: r.Direction, Channel: r.Channel}
}

// OperatingHours 营业时段元数据
// 对核心规划仅用于收集出现过的需求流
type OperatingHours struct {
	Direction      string   `json:"direction"`
	Channel        string   `json:"channel"`
	StartTimeLocal string   `json:"start_time_local,omitempty"` // HH:MM
	EndTimeLocal   string   `json:"end_time_local,omitempty"`   // HH:MM
	AppliesToDays  []string `json:"applies_to_days,omitempty"`  // mon..sun
}

// Stream 返回营业时段所属的需求流
func (oh OperatingHours) Stream() Stream {
	return Stream{Direction: oh.Direction, Channel: oh.Channel}
}
