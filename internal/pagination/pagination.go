// Package pagination converts offset/limit list parameters into SQL
// ORDER BY / LIMIT / OFFSET fragments. Offsets are not page-aligned: a caller
// asking for offset 5 with limit 10 gets rows 5..14 of the sorted result,
// exactly as `ORDER BY <sort> LIMIT <limit> OFFSET <offset>` would.
package pagination

import (
	"fmt"
	"strings"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Sort is a single ordering key. Field values come from code, never from
// request input, so they can be spliced into SQL directly.
type Sort struct {
	Field string
	Dir   Direction
}

func SortAsc(field string) Sort  { return Sort{Field: field, Dir: Asc} }
func SortDesc(field string) Sort { return Sort{Field: field, Dir: Desc} }

type Page struct {
	Offset int
	Limit  int
	Sorts  []Sort
}

// New builds a page request. Offset and limit validation is the caller's
// contract (offset >= 0, limit > 0); Validate is available for boundaries
// that receive them from request input.
func New(offset, limit int, sorts ...Sort) Page {
	return Page{Offset: offset, Limit: limit, Sorts: sorts}
}

func (p Page) Validate() error {
	if p.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", p.Offset)
	}
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", p.Limit)
	}
	return nil
}

// OrderClause renders "ORDER BY f1 DESC, f2 ASC", or "" without sort keys.
func (p Page) OrderClause() string {
	if len(p.Sorts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.Sorts))
	for _, s := range p.Sorts {
		parts = append(parts, s.Field+" "+string(s.Dir))
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// SQL renders the full trailing fragment with LIMIT/OFFSET placeholders;
// bind Args() after the query's own arguments.
func (p Page) SQL() string {
	clause := p.OrderClause()
	if clause != "" {
		clause += " "
	}
	return clause + "LIMIT ? OFFSET ?"
}

func (p Page) Args() []interface{} {
	return []interface{}{p.Limit, p.Offset}
}

// Bounds clips the window to an in-memory slice of length total and returns
// half-open [start, end) indexes.
func (p Page) Bounds(total int) (int, int) {
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}
