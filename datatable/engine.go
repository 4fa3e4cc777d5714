package datatable

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/postsadmin/backend/models"
)

// dateTextExpr renders updated_at exactly the way the cell renderer does,
// so date filtering matches the text the user sees in the grid.
const dateTextExpr = `to_char(updated_at, 'DD Mon YYYY HH24:MI:SS')`

// Response is the grid wire contract. Draw echoes the request token so the
// client can discard stale responses.
type Response struct {
	Draw            int       `json:"draw"`
	RecordsTotal    int64     `json:"recordsTotal"`
	RecordsFiltered int64     `json:"recordsFiltered"`
	Data            []RowView `json:"data"`
}

// Engine answers grid requests over the posts table. Filtering, ordering and
// the page window are all pushed into SQL; the full table is never loaded.
type Engine struct {
	db       *gorm.DB
	columns  []Column
	renderer Renderer
}

func NewEngine(db *gorm.DB, renderer Renderer) *Engine {
	return &Engine{db: db, columns: PostColumns, renderer: renderer}
}

// Run executes a grid request as three queries: the unfiltered count, the
// filtered count and the ordered page slice. They run as a group without a
// shared snapshot; a mutation racing the request is observable, which is
// acceptable for a read-mostly reporting view.
func (e *Engine) Run(ctx context.Context, req Request) (*Response, error) {
	var (
		total    int64
		filtered int64
		posts    []models.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.base(gctx).Count(&total).Error
	})
	g.Go(func() error {
		return e.applyFilters(e.base(gctx), req).Count(&filtered).Error
	})
	g.Go(func() error {
		q := e.applyOrder(e.applyFilters(e.base(gctx), req), req)
		q = q.Offset(req.Start)
		if req.Length >= 0 {
			q = q.Limit(req.Length)
		}
		return q.Find(&posts).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]RowView, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, e.renderer.Row(post))
	}

	return &Response{
		Draw:            req.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            rows,
	}, nil
}

func (e *Engine) base(ctx context.Context) *gorm.DB {
	return e.db.WithContext(ctx).Model(&models.Post{})
}

func (e *Engine) column(name string) (Column, bool) {
	for _, col := range e.columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// applyFilters adds the global search (OR across searchable columns) and the
// per-column filters (ANDed). Unknown and non-searchable columns are ignored
// without error.
func (e *Engine) applyFilters(q *gorm.DB, req Request) *gorm.DB {
	if term := strings.TrimSpace(req.Search); term != "" {
		q = q.Where(e.globalSearch(term))
	}
	for _, col := range e.columns {
		term, ok := req.Filters[col.Name]
		if !ok || !col.Searchable {
			continue
		}
		if cond := e.columnFilter(col, term); cond != nil {
			q = q.Where(cond)
		}
	}
	return q
}

func (e *Engine) globalSearch(term string) *gorm.DB {
	like := "%" + term + "%"
	cond := e.fresh().
		Where(`CAST(id AS TEXT) LIKE ?`, like).
		Or(`post_title ILIKE ?`, like).
		Or(`post_description ILIKE ?`, like).
		Or(dateTextExpr+` ILIKE ?`, like)

	// Status is searched as its rendered text. "inactive" contains
	// "active", so searching "active" matches both statuses; that is plain
	// substring semantics over what the grid displays.
	lower := strings.ToLower(term)
	if strings.Contains("active", lower) {
		cond = cond.Or(`post_status = ?`, true)
	}
	if strings.Contains("inactive", lower) {
		cond = cond.Or(`post_status = ?`, false)
	}
	return cond
}

func (e *Engine) columnFilter(col Column, term string) *gorm.DB {
	like := "%" + term + "%"
	switch col.Kind {
	case kindNumeric:
		return e.fresh().Where(`CAST(`+col.Expr+` AS TEXT) LIKE ?`, like)
	case kindText:
		return e.fresh().Where(col.Expr+` ILIKE ?`, like)
	case kindStatus:
		// Only the exact tokens "1" and "0" constrain the column; any
		// other value means no filter, not an error.
		switch term {
		case "1":
			return e.fresh().Where(col.Expr+` = ?`, true)
		case "0":
			return e.fresh().Where(col.Expr+` = ?`, false)
		}
		return nil
	case kindTimestamp:
		return e.fresh().Where(dateTextExpr+` ILIKE ?`, like)
	}
	return nil
}

// applyOrder adds ORDER BY terms in request order. Non-orderable and unknown
// columns are skipped. Column expressions come from the static descriptor
// table, never from input.
func (e *Engine) applyOrder(q *gorm.DB, req Request) *gorm.DB {
	for _, ord := range req.Order {
		col, ok := e.column(ord.Column)
		if !ok || !col.Orderable {
			continue
		}
		dir := "ASC"
		if ord.Dir == "desc" {
			dir = "DESC"
		}
		q = q.Order(col.Expr + " " + dir)
	}
	return q
}

func (e *Engine) fresh() *gorm.DB {
	return e.db.Session(&gorm.Session{NewDB: true})
}
