package datatable

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// the three grid queries run as a group, so arrival order is not fixed
	mock.MatchExpectationsInOrder(false)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewEngine(db, testRenderer()), mock
}

func postRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "post_title", "post_description", "post_status", "image", "date", "created_at", "updated_at",
	})
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		rows.AddRow(i, fmt.Sprintf("title %d", i), fmt.Sprintf("description %d", i),
			i%2 == 0, nil, now, now, now.Add(-time.Duration(i)*time.Minute))
	}
	return rows
}

func TestRunUnfilteredPage(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT \* FROM "posts" ORDER BY updated_at DESC LIMIT`).
		WillReturnRows(postRows(10))

	resp, err := engine.Run(context.Background(), Request{
		Draw:   3,
		Start:  0,
		Length: 10,
		Order:  []Order{{Column: "updated_at", Dir: "desc"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Draw)
	assert.Equal(t, int64(12), resp.RecordsTotal)
	assert.Equal(t, int64(12), resp.RecordsFiltered)
	assert.Len(t, resp.Data, 10)
	assert.Equal(t, uint(1), resp.Data[0].ID)
	assert.Contains(t, resp.Data[0].Title, "title 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunGlobalSearch(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE .*ILIKE`).
		WithArgs("%zzz%", "%zzz%", "%zzz%", "%zzz%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE .*ILIKE .* LIMIT`).
		WillReturnRows(postRows(0))

	resp, err := engine.Run(context.Background(), Request{Draw: 1, Length: 10, Search: "zzz"})
	require.NoError(t, err)

	assert.Equal(t, int64(12), resp.RecordsTotal)
	assert.Equal(t, int64(0), resp.RecordsFiltered)
	assert.Empty(t, resp.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunGlobalSearchMatchesStatusText(t *testing.T) {
	engine, mock := newTestEngine(t)

	// "inact" is a substring of "inactive" only, so exactly one boolean
	// condition joins the text matches
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE .*post_status`).
		WithArgs("%inact%", "%inact%", "%inact%", "%inact%", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE .* LIMIT`).
		WillReturnRows(postRows(2))

	resp, err := engine.Run(context.Background(), Request{Draw: 2, Length: 10, Search: "inact"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.RecordsFiltered)
	assert.Len(t, resp.Data, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStatusColumnFilter(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE post_status = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE post_status = \$1 LIMIT`).
		WillReturnRows(postRows(6))

	resp, err := engine.Run(context.Background(), Request{
		Draw:    1,
		Length:  10,
		Filters: map[string]string{"post_status": "1"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), resp.RecordsFiltered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStatusFilterIgnoresOtherValues(t *testing.T) {
	engine, mock := newTestEngine(t)

	// "2" is not a valid status token, so the filtered count matches the
	// unfiltered one
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT \* FROM "posts" LIMIT`).
		WillReturnRows(postRows(10))

	resp, err := engine.Run(context.Background(), Request{
		Draw:    1,
		Length:  10,
		Filters: map[string]string{"post_status": "2"},
	})
	require.NoError(t, err)

	assert.Equal(t, resp.RecordsTotal, resp.RecordsFiltered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunIgnoresUnknownAndVirtualColumns(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT \* FROM "posts" LIMIT`).
		WillReturnRows(postRows(5))

	resp, err := engine.Run(context.Background(), Request{
		Draw:   1,
		Length: 10,
		Filters: map[string]string{
			"image":     "blob",
			"action":    "x",
			"mystery":   "y",
			"dt_rowidx": "3",
		},
		Order: []Order{
			{Column: "image", Dir: "asc"},
			{Column: "nope", Dir: "desc"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), resp.RecordsFiltered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLengthMinusOneReturnsEverything(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	// no LIMIT clause: the query ends at the table reference
	mock.ExpectQuery(`SELECT \* FROM "posts"$`).
		WillReturnRows(postRows(12))

	resp, err := engine.Run(context.Background(), Request{Draw: 1, Length: -1})
	require.NoError(t, err)

	assert.Len(t, resp.Data, 12)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMultiColumnSort(t *testing.T) {
	engine, mock := newTestEngine(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "posts" ORDER BY post_title ASC,updated_at DESC LIMIT`).
		WillReturnRows(postRows(3))

	_, err := engine.Run(context.Background(), Request{
		Draw:   1,
		Length: 10,
		Order: []Order{
			{Column: "post_title", Dir: "asc"},
			{Column: "updated_at", Dir: "desc"},
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
