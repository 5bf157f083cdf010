package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"searchable-gallery/internal/catalog"
	"searchable-gallery/internal/database"
)

// maxQueryBody caps POST /api/items/query request bodies.
const maxQueryBody = 1 << 20

// ListItems handles GET /api/items?tag=a&tag=b&join=and. With no tag
// parameters every item is returned.
func (h *Handlers) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req *catalog.ListItemsRequest
	if q.Has("tag") || q.Has("join") {
		req = &catalog.ListItemsRequest{
			TagNames: q["tag"],
			JoinType: q.Get("join"),
		}
	}
	h.listItems(w, r, req)
}

// QueryItems handles POST /api/items/query with a ListItemsRequest body. An
// empty body lists every item.
func (h *Handlers) QueryItems(w http.ResponseWriter, r *http.Request) {
	var req catalog.ListItemsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			h.listItems(w, r, nil)
			return
		}
		writeJSONError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeJSONError(w, "invalid request body: trailing data after JSON object", http.StatusBadRequest)
		return
	}
	h.listItems(w, r, &req)
}

func (h *Handlers) listItems(w http.ResponseWriter, r *http.Request, req *catalog.ListItemsRequest) {
	items, err := h.catalog.ListItems(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, items)
}

// GetItem handles GET /api/items/{id}.
func (h *Handlers) GetItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, item)
}

// lookupItem resolves the {id} route variable to an item, writing the error
// response itself when that fails.
func (h *Handlers) lookupItem(w http.ResponseWriter, r *http.Request) (database.ItemWithTags, bool) {
	id, err := database.ParseItemID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return database.ItemWithTags{}, false
	}

	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return database.ItemWithTags{}, false
	}
	return item, true
}
