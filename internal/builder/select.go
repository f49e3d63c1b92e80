package builder

import (
	"sort"

	"github.com/agext/levenshtein"
	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/specialistvlad/suitegrid/internal/model"
	"github.com/specialistvlad/suitegrid/internal/nodeid"
)

// Select returns the tasks a run is about: the suite's tasks (if suite is
// set) followed by the explicitly named tasks, without duplicates. With no
// selection at all every task of the component is returned.
func Select(c *model.Component, taskPaths []string, suite string) ([]*model.Task, error) {
	var wanted []string
	if suite != "" {
		s, ok := c.Suite(suite)
		if !ok {
			names := make([]string, 0, len(c.Suites()))
			for _, s := range c.Suites() {
				names = append(names, s.Name)
			}
			return nil, unknown("suite", suite, names)
		}
		wanted = append(wanted, s.TaskPaths...)
	}
	for _, raw := range taskPaths {
		canonical, err := nodeid.Canonical(raw)
		if err != nil {
			return nil, faults.Config(faults.ErrInvalidValue, raw, "invalid task path: %v", err)
		}
		wanted = append(wanted, canonical)
	}
	if suite == "" && len(taskPaths) == 0 {
		return c.Tasks(), nil
	}

	var (
		out  []*model.Task
		seen = make(map[string]struct{})
	)
	for _, p := range wanted {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		t, ok := c.Task(p)
		if !ok {
			return nil, unknown("task", p, taskIDs(c))
		}
		out = append(out, t)
	}
	return out, nil
}

// unknown builds a ConfigError for an unresolvable name, with the closest
// candidate as a suggestion.
func unknown(what, name string, candidates []string) error {
	if best, ok := suggest(name, candidates); ok {
		return faults.Config(faults.ErrUnresolvedReference, name, "unknown %s, did you mean %q?", what, best)
	}
	return faults.Config(faults.ErrUnresolvedReference, name, "unknown %s", what)
}

// suggest returns the closest candidate if it is near enough to be a typo.
func suggest(name string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.Distance(name, c, nil)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := max(2, len(name)/3)
	return best, bestDist >= 0 && bestDist <= limit
}

func taskIDs(c *model.Component) []string {
	var ids []string
	for _, t := range c.Tasks() {
		ids = append(ids, t.ID())
	}
	return ids
}

func sortedIDs(m map[string]*model.Step) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
