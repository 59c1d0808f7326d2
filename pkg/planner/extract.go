package planner

import (
	"github.com/shiftopt/shiftopt/pkg/mip"
	"github.com/shiftopt/shiftopt/pkg/model"
)

// 0/1变量的取整阈值，容忍求解器返回的微小数值噪声
const binaryThreshold = 0.5

// 缺员小于该值视为0，不进入稀疏缺员表
const slackFloor = 1e-6

// Extract 把求解器原始解回读为业务结果
// 0/1变量按0.5阈值取整；缺员表稀疏，覆盖表稠密（含零需求时段）
func (pm *PlanModel) Extract(sol *mip.Solution) *model.Solution {
	in := pm.Input
	ti := pm.TI
	bpd := ti.BucketsPerDay()

	out := &model.Solution{
		Status:         string(sol.Status),
		ObjectiveValue: sol.Objective,
		Model: model.ModelSize{
			Variables:   pm.Mip.NumVars(),
			Constraints: pm.Mip.NumConstraints(),
		},
		Assignments:    []model.Assignment{},
		Allocations:    []model.Allocation{},
		Understaff:     []model.UnderstaffEntry{},
		Coverage:       []model.CoverageEntry{},
	}
	out.Warnings = append(out.Warnings, pm.warnings...)

	// 班次指派，按员工、天、模板序稳定输出
	for e := range in.Employees {
		emp := &in.Employees[e]
		for d := 0; d < ti.Days(); d++ {
			for t := range in.ShiftTemplates {
				varID, ok := pm.assignVars[assignKey{Emp: e, Day: d, Tpl: t}]
				if !ok || sol.Value(varID) < binaryThreshold {
					continue
				}
				out.Assignments = append(out.Assignments, model.Assignment{
					EmployeeID:        emp.ID,
					DayIndex:          d,
					EmploymentGroupID: emp.EmploymentGroupID,
					ShiftTemplateID:   in.ShiftTemplates[t].ID,
				})
			}
		}
	}

	// 技能分配，仅取值为1的时段
	for e := range in.Employees {
		emp := &in.Employees[e]
		for d := 0; d < ti.Days(); d++ {
			for b := 0; b < bpd; b++ {
				for sg := range in.SkillGroups {
					varID, ok := pm.allocVars[allocKey{Emp: e, Day: d, Bucket: b, SG: sg}]
					if !ok || sol.Value(varID) < binaryThreshold {
						continue
					}
					out.Allocations = append(out.Allocations, model.Allocation{
						EmployeeID:   emp.ID,
						DayIndex:     d,
						BucketIndex:  b,
						SkillGroupID: in.SkillGroups[sg].ID,
					})
				}
			}
		}
	}

	// 每时段每技能组的分配人数，供覆盖表统计
	allocated := make(map[slackKey]float64)
	for key, varID := range pm.allocVars {
		if sol.Value(varID) >= binaryThreshold {
			allocated[slackKey{Day: key.Day, Bucket: key.Bucket, SG: key.SG}]++
		}
	}

	for d := 0; d < ti.Days(); d++ {
		for b := 0; b < bpd; b++ {
			for sg := range in.SkillGroups {
				sgID := in.SkillGroups[sg].ID
				stream := pm.Demand.StreamOf[sgID]
				required := pm.Demand.RequiredAt(d, b, sgID)
				weight := pm.Weights.At(d, b, stream)
				slack := sol.Value(pm.slackVars[slackKey{Day: d, Bucket: b, SG: sg}])
				if slack < slackFloor {
					slack = 0
				} else {
					out.TotalUnderstaff += slack
					out.Understaff = append(out.Understaff, model.UnderstaffEntry{
						DayIndex:     d,
						BucketIndex:  b,
						SkillGroupID: sgID,
						Direction:    stream.Direction,
						Channel:      stream.Channel,
						Required:     required,
						Understaff:   slack,
						Weight:       weight,
					})
				}
				out.Coverage = append(out.Coverage, model.CoverageEntry{
					DayIndex:     d,
					BucketIndex:  b,
					SkillGroupID: sgID,
					Direction:    stream.Direction,
					Channel:      stream.Channel,
					Required:     required,
					Allocated:    allocated[slackKey{Day: d, Bucket: b, SG: sg}],
					Understaff:   slack,
					Weight:       weight,
				})
			}
		}
	}

	return out
}
