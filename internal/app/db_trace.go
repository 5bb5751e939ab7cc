package app

import (
	"regexp"
	"strconv"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Batched upserts render one placeholder tuple per row.
	placeholderRowsRegex = regexp.MustCompile(`\(\$\d+(?:, \$\d+)*\)(?:, \(\$\d+(?:, \$\d+)*\))+`)
)

// formatDBQueryForTrace collapses whitespace and multi-row VALUES lists so a
// batch upsert of standings or decklists stays readable in a span.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderRowsRegex.ReplaceAllStringFunc(normalized, collapsePlaceholderRows)
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

func collapsePlaceholderRows(rows string) string {
	extra := strings.Count(rows, "), (")
	first := rows[:strings.Index(rows, ")")+1]
	return first + " /* +" + strconv.Itoa(extra) + " rows */"
}
