package web

import (
	"database/sql"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/myintmo/knitcost/internal/errors"
	"github.com/myintmo/knitcost/internal/ops"
	"github.com/myintmo/knitcost/internal/render"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	renderer *Renderer
}

// HandleList handles GET /records: list costing records.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := ops.List(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Costings",
			Version: h.renderer.version,
		},
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleDetail handles GET /records/{id}: view a single record.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("record ID is required"))
		return
	}

	record, err := ops.Get(h.db, ops.GetInput{ID: id, IncludePhoto: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   record.Style.Name,
			Version: h.renderer.version,
		},
		Record:   record,
		PhotoURI: photoDataURI(record.Photo),
	})
}

// HandlePrint handles GET /records/{id}/print: printable document.
func (h *Handlers) HandlePrint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("record ID is required"))
		return
	}

	record, err := ops.Get(h.db, ops.GetInput{ID: id, IncludePhoto: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	doc, err := render.PrintDocument(&record.CostingRecord)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "print", PrintPageData{
		PageData: PageData{
			Title:   record.Style.Name,
			Version: h.renderer.version,
		},
		// The document is rendered from record data we control.
		Document: template.HTML(doc),
	})
}

// HandleCard handles GET /records/{id}/card.png: PNG share card.
func (h *Handlers) HandleCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("record ID is required"))
		return
	}

	record, err := ops.Get(h.db, ops.GetInput{ID: id, IncludePhoto: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	card, err := render.ShareCard(&record.CostingRecord)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(card)
}

// HandleDelete handles DELETE /records/{id}: delete a record.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("record ID is required"))
		return
	}

	result, err := ops.Delete(h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	http.Redirect(w, r, "/records", http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
