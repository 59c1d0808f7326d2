// Package planner 实现排班优化的模型构建与结果提取
package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// 预测时间戳里的英文月份缩写
var monthAbbr = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// 周几键，下标与 time.Weekday 对齐（周日为0）
var weekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// TimeIndex 时间索引
// 在绝对时间戳与 (天下标, 时段下标) 坐标之间转换，网格一经创建不可变
type TimeIndex struct {
	startDate     time.Time
	days          int
	bucketMinutes int
}

// NewTimeIndex 根据网格配置创建时间索引
func NewTimeIndex(cfg model.TimeGridConfig) (*TimeIndex, error) {
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidTimeGrid,
			fmt.Sprintf("起始日期 %q 无法解析，应为 YYYY-MM-DD", cfg.StartDate)).WithCause(err)
	}
	if cfg.Days <= 0 {
		return nil, errors.New(errors.CodeInvalidTimeGrid,
			fmt.Sprintf("规划天数必须为正数，当前为 %d", cfg.Days))
	}
	if cfg.BucketMinutes <= 0 || (24*60)%cfg.BucketMinutes != 0 {
		return nil, errors.New(errors.CodeInvalidTimeGrid,
			fmt.Sprintf("时段长度 %d 分钟必须整除1440", cfg.BucketMinutes))
	}
	return &TimeIndex{
		startDate:     start,
		days:          cfg.Days,
		bucketMinutes: cfg.BucketMinutes,
	}, nil
}

// Days 返回规划天数
func (ti *TimeIndex) Days() int {
	return ti.days
}

// BucketMinutes 返回时段长度（分钟）
func (ti *TimeIndex) BucketMinutes() int {
	return ti.bucketMinutes
}

// BucketsPerDay 返回每天时段数
func (ti *TimeIndex) BucketsPerDay() int {
	return 24 * 60 / ti.bucketMinutes
}

// SlotOf 把时间戳换算为时段坐标
// 日期超出规划范围返回 OutOfHorizon，分钟未对齐时段边界返回 MisalignedTimestamp
func (ti *TimeIndex) SlotOf(t time.Time) (model.Slot, error) {
	day := int(truncateDay(t).Sub(ti.startDate).Hours() / 24)
	if day < 0 || day >= ti.days {
		return model.Slot{}, errors.OutOfHorizon(
			t.Format("2006-01-02T15:04:05"), ti.startDate.Format("2006-01-02"), ti.days)
	}
	minuteOfDay := t.Hour()*60 + t.Minute()
	if minuteOfDay%ti.bucketMinutes != 0 || t.Second() != 0 {
		return model.Slot{}, errors.MisalignedTimestamp(
			t.Format("2006-01-02T15:04:05"), ti.bucketMinutes)
	}
	return model.Slot{Day: day, Bucket: minuteOfDay / ti.bucketMinutes}, nil
}

// TimeOf 把时段坐标换算回时间戳（时段起点）
func (ti *TimeIndex) TimeOf(day, bucket int) (time.Time, error) {
	if day < 0 || day >= ti.days {
		return time.Time{}, errors.IndexOutOfRange("天", day, ti.days)
	}
	if bucket < 0 || bucket >= ti.BucketsPerDay() {
		return time.Time{}, errors.IndexOutOfRange("时段", bucket, ti.BucketsPerDay())
	}
	return ti.startDate.AddDate(0, 0, day).
		Add(time.Duration(bucket*ti.bucketMinutes) * time.Minute), nil
}

// DateOf 返回某天的日期
func (ti *TimeIndex) DateOf(day int) time.Time {
	return ti.startDate.AddDate(0, 0, day)
}

// DayOfWeek 返回某天的周几键（mon..sun）
func (ti *TimeIndex) DayOfWeek(day int) string {
	return weekdayKeys[ti.DateOf(day).Weekday()]
}

// WeekOf 返回某天所在的周块
// 以起始日期对齐的7天块，0起始，与日历周界无关
func (ti *TimeIndex) WeekOf(day int) int {
	return day / 7
}

// Weeks 返回所有周块下标
func (ti *TimeIndex) Weeks() []int {
	n := (ti.days + 6) / 7
	weeks := make([]int, n)
	for i := range weeks {
		weeks[i] = i
	}
	return weeks
}

// Slots 返回规划范围内的所有时段坐标，按天、时段升序
// 每次调用返回新切片，可重复遍历
func (ti *TimeIndex) Slots() []model.Slot {
	bpd := ti.BucketsPerDay()
	slots := make([]model.Slot, 0, ti.days*bpd)
	for d := 0; d < ti.days; d++ {
		for b := 0; b < bpd; b++ {
			slots = append(slots, model.Slot{Day: d, Bucket: b})
		}
	}
	return slots
}

// truncateDay 去掉时间戳的时分秒
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseForecastTimestamp 解析 'DD-MON-YYYY HH24:MI:SS' 格式的预测时间戳
// 例：'01-JAN-2026 06:00:00'，月份为大写英文缩写
func parseForecastTimestamp(ts string) (time.Time, error) {
	parts := strings.Split(ts, " ")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("预测时间戳格式非法: %q", ts)
	}
	dparts := strings.Split(parts[0], "-")
	tparts := strings.Split(parts[1], ":")
	if len(dparts) != 3 || len(tparts) != 3 {
		return time.Time{}, fmt.Errorf("预测时间戳格式非法: %q", ts)
	}
	day, err1 := strconv.Atoi(dparts[0])
	year, err2 := strconv.Atoi(dparts[2])
	month, ok := monthAbbr[strings.ToUpper(dparts[1])]
	hh, err3 := strconv.Atoi(tparts[0])
	mm, err4 := strconv.Atoi(tparts[1])
	ss, err5 := strconv.Atoi(tparts[2])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || !ok {
		return time.Time{}, fmt.Errorf("预测时间戳格式非法: %q", ts)
	}
	return time.Date(year, month, day, hh, mm, ss, 0, time.UTC), nil
}

// hhmmToBucket 把 HH:MM 换算为天内时段下标
func hhmmToBucket(hhmm string, bucketMinutes int) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("时间 %q 格式非法，应为 HH:MM", hhmm)
	}
	hh, err1 := strconv.Atoi(parts[0])
	mm, err2 := strconv.Atoi(parts[1])
	// 允许 24:00 表示当天结束，由调用方裁剪
	if err1 != nil || err2 != nil || hh < 0 || hh > 24 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("时间 %q 格式非法，应为 HH:MM", hhmm)
	}
	return (hh*60 + mm) / bucketMinutes, nil
}
