package datatable

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequestDefaults(t *testing.T) {
	req := ParseRequest(url.Values{})

	assert.Equal(t, 0, req.Draw)
	assert.Equal(t, 0, req.Start)
	assert.Equal(t, DefaultLength, req.Length)
	assert.Empty(t, req.Search)
	assert.Empty(t, req.Filters)
	assert.Empty(t, req.Order)
}

func TestParseRequestClampsStart(t *testing.T) {
	values := url.Values{}
	values.Set("start", "-25")

	req := ParseRequest(values)
	assert.Equal(t, 0, req.Start)
}

func TestParseRequestLengthSentinel(t *testing.T) {
	values := url.Values{}
	values.Set("length", "-1")
	assert.Equal(t, -1, ParseRequest(values).Length)

	// anything below the sentinel is nonsense and falls back to the default
	values.Set("length", "-7")
	assert.Equal(t, DefaultLength, ParseRequest(values).Length)

	values.Set("length", "not-a-number")
	assert.Equal(t, DefaultLength, ParseRequest(values).Length)
}

func TestParseRequestColumnFilters(t *testing.T) {
	values := url.Values{}
	values.Set("columns[0][data]", "id")
	values.Set("columns[0][search][value]", "")
	values.Set("columns[1][data]", "post_title")
	values.Set("columns[1][search][value]", "go")
	values.Set("columns[2][data]", "post_status")
	values.Set("columns[2][search][value]", "1")

	req := ParseRequest(values)
	assert.Equal(t, map[string]string{"post_title": "go", "post_status": "1"}, req.Filters)
}

func TestParseRequestOrderResolvesColumnNames(t *testing.T) {
	values := url.Values{}
	values.Set("columns[0][data]", "id")
	values.Set("columns[1][data]", "updated_at")
	values.Set("order[0][column]", "1")
	values.Set("order[0][dir]", "desc")
	values.Set("order[1][column]", "0")
	values.Set("order[1][dir]", "sideways")

	req := ParseRequest(values)
	assert.Equal(t, []Order{
		{Column: "updated_at", Dir: "desc"},
		{Column: "id", Dir: "asc"}, // unknown directions normalize to asc
	}, req.Order)
}

func TestParseRequestOrderSkipsDanglingColumnIndex(t *testing.T) {
	values := url.Values{}
	values.Set("columns[0][data]", "id")
	values.Set("order[0][column]", "9")
	values.Set("order[0][dir]", "asc")
	values.Set("order[1][column]", "0")
	values.Set("order[1][dir]", "desc")

	req := ParseRequest(values)
	assert.Equal(t, []Order{{Column: "id", Dir: "desc"}}, req.Order)
}

func TestParseRequestReadsDrawAndSearch(t *testing.T) {
	values := url.Values{}
	values.Set("draw", "17")
	values.Set("search[value]", "needle")

	req := ParseRequest(values)
	assert.Equal(t, 17, req.Draw)
	assert.Equal(t, "needle", req.Search)
}
