package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrdering parses a comma separated list of fields, "-" prefixed fields are descending.
// eg. "-start_date,title"
func ParseOrdering(s string) []DBOrdering {
	var orderings []DBOrdering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		orderings = append(orderings, DBOrdering{Field: field, Ascending: !descending})
	}
	return orderings
}

// FormatOrdering is the inverse of ParseOrdering.
func FormatOrdering(orderings []DBOrdering) string {
	fields := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if ord.Ascending {
			fields = append(fields, ord.Field)
		} else {
			fields = append(fields, "-"+ord.Field)
		}
	}
	return strings.Join(fields, ",")
}
