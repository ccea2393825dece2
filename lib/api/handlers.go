package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// HandleStatus reports the last sync outcome of every configured feed.
func HandleStatus(svc *SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := svc.Status()
		if err != nil {
			RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		RespondOK(w, statuses)
	}
}

// HandleFeedsList returns the configured feeds.
func HandleFeedsList(svc *SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configured, err := svc.Feeds()
		if err != nil {
			RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		RespondOK(w, configured)
	}
}

// HandleFeedSync downloads and applies one feed.
func HandleFeedSync(svc *SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "feed_name")

		scan, err := svc.SyncFeed(name)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				RespondError(w, http.StatusNotFound, err.Error())
			} else {
				RespondError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		RespondOK(w, scan)
	}
}

// HandleFeedAddresses returns the accepted/rejected lists of the last sync.
func HandleFeedAddresses(svc *SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "feed_name")

		scan, err := svc.Addresses(name)
		if err != nil {
			RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		RespondOK(w, scan)
	}
}
