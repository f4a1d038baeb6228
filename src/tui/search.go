package tui

import (
	"strings"
)

// applyFilter filters items by job, tier and search query.
func (m *MainModel) applyFilter() {
	filter := m.header.JobFilter()
	query := strings.ToLower(m.searchQuery)

	var filtered []Item
	for _, item := range m.items {
		if filter != allJobs && item.Report.JobName != filter {
			continue
		}
		if m.tierFilter > 0 && item.Tier() != m.tierFilter {
			continue
		}
		if query != "" && !matches(item, query) {
			continue
		}
		filtered = append(filtered, item)
	}

	m.listView.SetItems(filtered)
	if selectedItem, ok := m.listView.Selected(); ok {
		m.updateDetailContent(selectedItem)
	} else {
		m.detailViewport.SetContent("")
	}
}

// matches searches the tag, message, paths and proposed repairs of an item.
func matches(item Item, query string) bool {
	rec := item.Record()
	fields := []string{rec.Tag, rec.Message, rec.Path, item.Report.JobName, item.Report.JobPath}
	for _, s := range item.Solutions() {
		fields = append(fields, s.Message, s.Command)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
