package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/mediatypes"
)

// GetItemImage handles GET /api/items/{id}/image and returns the raw image
// bytes of the item's file.
func (h *Handlers) GetItemImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	data, err := h.resolver.ResolveBytes(item.FullPath)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeImage(w, mediatypes.ImageMimeType(item.FullPath), data, "private, max-age=3600")
}

// GetItemImageData handles GET /api/items/{id}/image-data and returns the
// image as a JSON-encoded data URL string.
func (h *Handlers) GetItemImageData(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	url, err := h.resolver.DataURL(item.FullPath)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, url)
}

// GetThumbnail handles GET /api/thumbnails/{ref}.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]

	data, err := h.resolver.ReadThumbnail(ref)
	if err != nil {
		logging.Debug("Thumbnail %q: %v", ref, err)
		writeError(w, r, err)
		return
	}

	writeImage(w, mediatypes.ImageMimeType(ref), data, "public, max-age=86400")
}

func writeImage(w http.ResponseWriter, mimeType string, data []byte, cacheControl string) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		logging.Debug("image write aborted: %v", err)
	}
}
