package excel

import (
	"fmt"
	"sort"

	"wbsdash/internal/model"
)

// compareIDs 对比最大汇总表与给定资源分配表的作业 ID 集合
func (s *session) compareIDs(a *assignmentTable) (model.ActivityIDComparison, bool) {
	desc, ok := s.pick(model.TableTypeActivitySummary, false)
	if !ok || a == nil {
		return model.ActivityIDComparison{}, false
	}
	summary := s.frame(desc)
	if !summary.Has(model.FieldActivityID) || !a.Has(model.FieldActivityID) {
		return model.ActivityIDComparison{}, false
	}

	left := make(map[string]struct{})
	for i := range summary.Rows {
		if id := summary.Text(i, model.FieldActivityID); id != "" {
			left[id] = struct{}{}
		}
	}
	right := make(map[string]struct{})
	for _, id := range a.activityIDs() {
		right[id] = struct{}{}
	}

	return model.ActivityIDComparison{
		SummaryUnique: len(left),
		AssignUnique:  len(right),
		SummaryOnly:   difference(left, right),
		AssignOnly:    difference(right, left),
	}, true
}

func difference(a, b map[string]struct{}) []string {
	out := make([]string, 0)
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func parityWarning(c model.ActivityIDComparison) string {
	return fmt.Sprintf("Activity ID mismatch: %d only in Activity Summary, %d only in Resource Assignments",
		len(c.SummaryOnly), len(c.AssignOnly))
}
