package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"
)

// minQueryLen is the shortest accepted destination query. Shorter input
// produces too many useless candidates to be worth a lookup call.
const minQueryLen = 3

// SearchDestinations resolves a free-text query to concrete destination
// candidates. The client must pick one of these before requesting quotes.
func (h *Handler) SearchDestinations(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < minQueryLen {
		writeError(w, http.StatusBadRequest, "query must be at least 3 characters", nil)
		return
	}

	dests, err := h.lookup.Search(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusBadGateway, "destination lookup unavailable", nil)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("destinations", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, dest := range dests {
						e.Obj(func(e *jx.Encoder) {
							e.Field("id", func(e *jx.Encoder) { e.Str(dest.ID) })
							e.Field("subdistrict", func(e *jx.Encoder) { e.Str(dest.Subdistrict) })
							e.Field("district", func(e *jx.Encoder) { e.Str(dest.District) })
							e.Field("city", func(e *jx.Encoder) { e.Str(dest.City) })
							e.Field("province", func(e *jx.Encoder) { e.Str(dest.Province) })
							e.Field("postal_code", func(e *jx.Encoder) { e.Str(dest.PostalCode) })
						})
					}
				})
			})
		})
	})
}
