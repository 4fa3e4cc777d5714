package datatable

// columnKind enumerates the filter and sort policies a grid column can
// carry. The per-column behavior is a fixed table, not an open-ended set of
// callbacks.
type columnKind int

const (
	kindVirtual   columnKind = iota // rendered only, never filtered or sorted
	kindNumeric                     // substring match on the string form, numeric sort
	kindText                        // case-insensitive substring, lexicographic sort
	kindStatus                      // filters only for exactly "1"/"0", searched as status text
	kindTimestamp                   // substring against the rendered date text, chronological sort
)

// Column describes one grid column: its wire name, the database column it
// reads from and the policy used for searching, filtering and ordering.
type Column struct {
	Name       string
	Expr       string // SQL column name, empty for virtual columns
	Kind       columnKind
	Searchable bool
	Orderable  bool
}

// PostColumns is the authoritative descriptor table for the posts grid.
// Wire names match the client widget's column definitions.
var PostColumns = []Column{
	{Name: "id", Expr: "id", Kind: kindNumeric, Searchable: true, Orderable: true},
	{Name: "post_title", Expr: "post_title", Kind: kindText, Searchable: true, Orderable: true},
	{Name: "post_description", Expr: "post_description", Kind: kindText, Searchable: true, Orderable: true},
	{Name: "image", Kind: kindVirtual},
	{Name: "post_status", Expr: "post_status", Kind: kindStatus, Searchable: true, Orderable: true},
	{Name: "updated_at", Expr: "updated_at", Kind: kindTimestamp, Searchable: true, Orderable: true},
	{Name: "action", Kind: kindVirtual},
}
