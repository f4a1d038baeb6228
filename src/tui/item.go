package tui

import (
	"sort"

	"jobdoctor/src/contracts"
)

// Item is one problem of one job. It implements bubbles/list.Item.
type Item struct {
	Report contracts.JobReport
	// Problem indexes Report.Problems; -1 stands for the scan error.
	Problem int
	Rank    int
}

// Record returns the problem this item shows.
func (i Item) Record() contracts.ProblemRecord {
	if i.Problem < 0 || i.Problem >= len(i.Report.Problems) {
		return contracts.ProblemRecord{
			Tag:     contracts.TagScanError,
			Message: i.Report.ScanError,
			Path:    i.Report.JobPath,
		}
	}
	return i.Report.Problems[i.Problem]
}

func (i Item) Tag() string { return i.Record().Tag }

func (i Item) Tier() int { return contracts.Tier(i.Tag()) }

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Record().Message }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return i.Tag() }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string { return i.Report.JobName }

// Solutions returns the repairs proposed for this problem.
func (i Item) Solutions() []contracts.SolutionRecord {
	var out []contracts.SolutionRecord
	for _, s := range i.Report.Solutions {
		if s.Problem == i.Problem {
			out = append(out, s)
		}
	}
	return out
}

// ItemsFromReports flattens job reports into ranked items: most severe tier
// first, then by job, then in the order the checks reported them.
func ItemsFromReports(reports []contracts.JobReport) []Item {
	var items []Item
	for _, r := range reports {
		if r.ScanError != "" {
			items = append(items, Item{Report: r, Problem: -1})
		}
		for p := range r.Problems {
			items = append(items, Item{Report: r, Problem: p})
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		ta, tb := items[a].Tier(), items[b].Tier()
		if ta != tb {
			return ta < tb
		}
		if items[a].Report.JobName != items[b].Report.JobName {
			return items[a].Report.JobName < items[b].Report.JobName
		}
		return items[a].Problem < items[b].Problem
	})
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

// jobNames returns the sorted names of jobs that have items.
func jobNames(items []Item) []string {
	seen := make(map[string]bool)
	var names []string
	for _, it := range items {
		if !seen[it.Report.JobName] {
			seen[it.Report.JobName] = true
			names = append(names, it.Report.JobName)
		}
	}
	sort.Strings(names)
	return names
}
