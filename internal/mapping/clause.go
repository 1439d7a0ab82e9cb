package mapping

import "strings"

// SortClause is one parsed orderBy token.
type SortClause struct {
	Field      string
	Descending bool
}

// ParseOrderBy splits orderBy on commas in input order. Blank tokens are
// skipped; a trailing "desc" word (any case) marks the clause descending.
func ParseOrderBy(orderBy string) []SortClause {
	if strings.TrimSpace(orderBy) == "" {
		return nil
	}
	var out []SortClause
	for _, token := range strings.Split(orderBy, ",") {
		c, ok := parseClause(token)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func parseClause(token string) (SortClause, bool) {
	parts := strings.Fields(token)
	if len(parts) == 0 {
		return SortClause{}, false
	}
	return SortClause{
		Field:      parts[0],
		Descending: len(parts) > 1 && strings.EqualFold(parts[len(parts)-1], "desc"),
	}, true
}
