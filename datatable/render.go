package datatable

import (
	"fmt"
	"html"
	"strings"

	"github.com/postsadmin/backend/models"
)

// UpdatedAtLayout is the fixed, locale-independent grid date format. It
// matches the to_char expression the engine filters with.
const UpdatedAtLayout = "02 Jan 2006 15:04:05"

// RowView is the renderer-produced row sent to the client per grid row,
// keyed by wire column name. Text cells are ready HTML fragments with all
// user-controlled values escaped.
type RowView struct {
	ID          uint   `json:"id"`
	Title       string `json:"post_title"`
	Description string `json:"post_description"`
	Image       string `json:"image"`
	Status      string `json:"post_status"`
	UpdatedAt   string `json:"updated_at"`
	Action      string `json:"action"`
}

// Renderer maps a raw post to its presentation row. It is a pure function
// of the post; the only collaborator is the asset URL resolver.
type Renderer struct {
	publicURL func(key string) string
}

func NewRenderer(publicURL func(string) string) Renderer {
	return Renderer{publicURL: publicURL}
}

func (r Renderer) Row(post models.Post) RowView {
	return RowView{
		ID:          post.ID,
		Title:       textCell(post.Title, "text-sm text-gray-700 break-words max-w-[120px] font-medium line-clamp-2"),
		Description: textCell(post.Description, "text-xs text-gray-500 break-words max-w-[120px] line-clamp-3"),
		Image:       r.imageCell(post.Image),
		Status:      statusCell(post),
		UpdatedAt:   fmt.Sprintf(`<p class="text-xs text-gray-500">%s</p>`, post.UpdatedAt.Format(UpdatedAtLayout)),
		Action:      actionCell(post),
	}
}

// textCell truncates visually via CSS only; the full value still travels in
// the fragment and in the title attribute.
func textCell(value, class string) string {
	escaped := html.EscapeString(value)
	return fmt.Sprintf(`<p class="%s" title="%s">%s</p>`, class, escaped, escaped)
}

func (r Renderer) imageCell(key *string) string {
	if key == nil || *key == "" {
		return ""
	}
	return fmt.Sprintf(
		`<div class="flex justify-center items-center"><img src="%s" class="w-14 h-14 rounded-lg object-cover"></div>`,
		html.EscapeString(r.publicURL(*key)),
	)
}

// statusCell renders the two-state badge plus the toggle control. The
// control carries the post id and the current status text so the client can
// request the opposite state.
func statusCell(post models.Post) string {
	var badge string
	if post.Status {
		badge = `<span class="text-green-600 inline-flex items-center gap-x-2 min-w-[90px]">` +
			`<span class="relative flex h-2 w-2">` +
			`<span class="animate-ping absolute inline-flex h-full w-full rounded-full bg-green-400 opacity-50"></span>` +
			`<span class="relative inline-flex rounded-full h-2 w-2 bg-green-500"></span>` +
			`</span>` +
			`<span class="font-normal text-sm italic">Active</span>` +
			`</span>`
	} else {
		badge = `<span class="text-gray-600 inline-flex items-center gap-x-2 min-w-[90px]">` +
			`<span class="inline-flex rounded-full h-3 w-3 bg-red-500"></span>` +
			`<span class="text-sm font-normal italic">Inactive</span>` +
			`</span>`
	}

	button := fmt.Sprintf(
		`<button class="toggle-status ml-2 w-8 h-8 rounded border bg-gray-50 hover:bg-gray-100 flex items-center justify-center transition" data-id="%d" data-status="%s">&#8635;</button>`,
		post.ID, post.StatusText(),
	)

	return `<div class="flex items-center">` + badge + button + `</div>`
}

// actionCell renders the edit link, the show link (enabled only for active
// posts) and the delete control carrying the title for the confirm dialog.
func actionCell(post models.Post) string {
	var b strings.Builder
	b.WriteString(`<div class="flex gap-2 justify-center items-center">`)

	fmt.Fprintf(&b,
		`<a href="/posts/edit/%d" class="edit-post border rounded p-2 bg-gray-50 hover:bg-green-50 flex items-center justify-center">Edit</a>`,
		post.ID,
	)

	if post.Status {
		fmt.Fprintf(&b,
			`<a href="/posts/%d" class="show-post border rounded p-2 bg-gray-50 hover:bg-white flex items-center justify-center">Show</a>`,
			post.ID,
		)
	} else {
		b.WriteString(`<a class="show-post border rounded p-2 bg-gray-200 cursor-not-allowed flex items-center justify-center">Show</a>`)
	}

	fmt.Fprintf(&b,
		`<button data-id="%d" data-post_title="%s" class="delete-post border p-2 rounded text-red-600 bg-red-50 hover:bg-red-100 flex items-center justify-center">Delete</button>`,
		post.ID, html.EscapeString(post.Title),
	)

	b.WriteString(`</div>`)
	return b.String()
}
