package board

import (
	"strings"

	"bulletin/internal/models"
)

// KanbanColumn is one grouped column of the support board view.
type KanbanColumn struct {
	Label   string
	Records []models.Request
}

// GroupByStatus projects records into columns labeled by the status
// vocabulary, in vocabulary order. Matching is case-insensitive; a record
// whose status matches no label lands in the first column. A nil or empty
// label set yields no columns.
func GroupByStatus(records []models.Request, labels []string) []KanbanColumn {
	if len(labels) == 0 {
		return nil
	}

	columns := make([]KanbanColumn, len(labels))
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		columns[i].Label = label
		index[strings.ToLower(label)] = i
	}

	for _, record := range records {
		i, ok := index[strings.ToLower(record.Status)]
		if !ok {
			i = 0
		}
		columns[i].Records = append(columns[i].Records, record)
	}
	return columns
}
