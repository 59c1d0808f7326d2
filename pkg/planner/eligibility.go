package planner

import (
	"fmt"

	"github.com/shiftopt/shiftopt/pkg/errors"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// 工时匹配的浮点容差
const hoursEpsilon = 1e-9

type eligKey struct {
	GroupID    string
	TemplateID string
}

// Eligibility 雇佣组与班次模板的匹配结果
type Eligibility struct {
	allowed  map[eligKey]struct{}
	warnings []model.Warning
}

// Allowed 判断雇佣组是否可排某模板
func (e *Eligibility) Allowed(groupID, templateID string) bool {
	_, ok := e.allowed[eligKey{GroupID: groupID, TemplateID: templateID}]
	return ok
}

// Warnings 返回无可用模板的雇佣组告警
func (e *Eligibility) Warnings() []model.Warning {
	return e.warnings
}

// ComputeEligibility 按日工时匹配雇佣组与班次模板
// 模板工时与组的 hours_per_day 差值在容差内视为匹配；
// 一个模板都匹配不上的组产出 NoEligibleTemplate 告警，该组员工将无法被排班
func ComputeEligibility(groups []model.EmploymentGroup, templates []model.ShiftTemplate, bucketMinutes int) *Eligibility {
	e := &Eligibility{allowed: make(map[eligKey]struct{})}

	for _, g := range groups {
		count := 0
		for i := range templates {
			t := &templates[i]
			if t.Kind() == model.TemplateInvalid {
				continue
			}
			hours := t.WorkedHours(bucketMinutes)
			if hours >= g.HoursPerDay.Min-hoursEpsilon && hours <= g.HoursPerDay.Max+hoursEpsilon {
				e.allowed[eligKey{GroupID: g.ID, TemplateID: t.ID}] = struct{}{}
				count++
			}
		}
		if count == 0 {
			e.warnings = append(e.warnings, model.Warning{
				Code: string(errors.CodeNoEligibleTemplate),
				Message: fmt.Sprintf("雇佣组 %s 没有任何匹配日工时 [%g, %g] 的班次模板，该组员工不会被排班",
					g.ID, g.HoursPerDay.Min, g.HoursPerDay.Max),
			})
		}
	}
	return e
}
