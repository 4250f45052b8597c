// Package resolve computes the effective theme a display instance
// renders: the base theme's fields layered with whichever rules are
// active under the current circumstances.
package resolve

import (
	"sort"

	"github.com/kubagp1/school-clock/internal/condition"
	"github.com/kubagp1/school-clock/internal/model"
	"github.com/kubagp1/school-clock/internal/theme"
)

// EffectiveTheme resolves one concrete value per known field name.
//
// Layering, lowest precedence first: built-in defaults, the base
// theme's enabled fields, active user rules (smaller index wins a
// conflict), active news-ticker rules. The two rule groups fold
// independently; in practice their field namespaces are disjoint.
//
// The function is pure: no I/O, deterministic, and total over valid
// input. Stored field or condition data that fails validation aborts
// resolution instead of degrading the display silently.
func EffectiveTheme(baseFields []theme.Field, rules []model.Rule, circ condition.Circumstances) (map[string]any, error) {
	if err := theme.Validate(baseFields); err != nil {
		return nil, err
	}

	merged := theme.Defaults()
	for _, f := range theme.OnlyEnabled(baseFields) {
		merged[f.Name] = f
	}

	userFields, err := fieldsToApply(userRules(rules), circ)
	if err != nil {
		return nil, err
	}
	tickerFields, err := fieldsToApply(groupRules(rules, model.InternalGroupNewsTicker), circ)
	if err != nil {
		return nil, err
	}

	for name, f := range userFields {
		merged[name] = f
	}
	for name, f := range tickerFields {
		merged[name] = f
	}

	return theme.NameValue(merged), nil
}

// fieldsToApply folds the enabled fields of every active rule into one
// partial record. Rules are visited in descending index order so that
// the lowest-index active rule overwrites last and wins.
func fieldsToApply(rules []model.Rule, circ condition.Circumstances) (map[string]theme.Field, error) {
	active := make([]model.Rule, 0, len(rules))
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		cond, err := condition.Parse(r.Condition)
		if err != nil {
			return nil, err
		}
		if condition.Evaluate(cond, circ) {
			active = append(active, r)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Index > active[j].Index
	})

	out := make(map[string]theme.Field)
	for _, r := range active {
		if r.Theme == nil {
			continue
		}
		if err := theme.Validate(r.Theme.Fields); err != nil {
			return nil, err
		}
		for _, f := range theme.OnlyEnabled(r.Theme.Fields) {
			out[f.Name] = f
		}
	}
	return out, nil
}

func userRules(rules []model.Rule) []model.Rule {
	out := make([]model.Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsUserRule() {
			out = append(out, r)
		}
	}
	return out
}

func groupRules(rules []model.Rule, group string) []model.Rule {
	out := make([]model.Rule, 0, len(rules))
	for _, r := range rules {
		if r.InGroup(group) {
			out = append(out, r)
		}
	}
	return out
}
