package datatable

import (
	"fmt"
	"net/url"
	"strconv"
)

// DefaultLength is the page size used when the client sends none.
const DefaultLength = 10

// Request is a decoded grid request: a draw correlation token, a window into
// the filtered set, a global search term, per-column filter terms and an
// ordered sort list. Column names that the descriptor table doesn't know are
// carried through and ignored by the engine.
type Request struct {
	Draw    int
	Start   int
	Length  int
	Search  string
	Filters map[string]string
	Order   []Order
}

type Order struct {
	Column string
	Dir    string // "asc" or "desc"
}

// ParseRequest decodes the DataTables server-side parameters: draw, start,
// length, search[value], columns[i][data], columns[i][search][value] and
// order[i][column] / order[i][dir]. Start is clamped to >= 0; length -1 is
// the "no limit" sentinel and passes through unchanged.
func ParseRequest(values url.Values) Request {
	req := Request{
		Draw:    intValue(values, "draw", 0),
		Start:   intValue(values, "start", 0),
		Length:  intValue(values, "length", DefaultLength),
		Search:  values.Get("search[value]"),
		Filters: map[string]string{},
	}
	if req.Start < 0 {
		req.Start = 0
	}
	if req.Length < -1 || req.Length == 0 {
		req.Length = DefaultLength
	}

	for i := 0; ; i++ {
		name := values.Get(fmt.Sprintf("columns[%d][data]", i))
		if name == "" {
			break
		}
		if term := values.Get(fmt.Sprintf("columns[%d][search][value]", i)); term != "" {
			req.Filters[name] = term
		}
	}

	// order[i][column] is an index into the columns array; resolve it to
	// the column's wire name. Entries that point nowhere are dropped.
	for i := 0; ; i++ {
		colRef := values.Get(fmt.Sprintf("order[%d][column]", i))
		if colRef == "" {
			break
		}
		name := values.Get(fmt.Sprintf("columns[%s][data]", colRef))
		if name == "" {
			continue
		}
		dir := values.Get(fmt.Sprintf("order[%d][dir]", i))
		if dir != "desc" {
			dir = "asc"
		}
		req.Order = append(req.Order, Order{Column: name, Dir: dir})
	}

	return req
}

func intValue(values url.Values, key string, defaultValue int) int {
	s := values.Get(key)
	if s == "" {
		return defaultValue
	}
	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return asInt
}
