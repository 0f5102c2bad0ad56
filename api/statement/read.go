package statement

import (
	"net/http"

	"CommissionFlow/api"
	"CommissionFlow/api/utils"
)

// GetDocument returns the full document record for the review UI, failed
// transactions and correction history included.
func GetDocument(store DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		doc, err := store.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		api.RespondWithPayload(w, http.StatusOK, doc)
	}
}

// ListDocuments returns a page of documents, newest first.
func ListDocuments(store DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		docs, total, err := store.List(r.Context(), params.Limit, params.Offset)
		if err != nil {
			respondError(w, err)
			return
		}
		params.SetPaginationStats(total)
		api.RespondWithPayload(w, http.StatusOK, map[string]interface{}{
			"documents":  docs,
			"pagination": params,
		})
	}
}
