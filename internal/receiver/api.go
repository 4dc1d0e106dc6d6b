package receiver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP surface of the receiver: the JSON stats endpoint
// and the Prometheus scrape endpoint.
func NewRouter(stats *Stats) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/stats", statsHandler(stats)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func statsHandler(stats *Stats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonBytes, err := json.Marshal(stats.Snapshot())
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to marshal stats: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(jsonBytes)
	}
}
