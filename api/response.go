package api

import (
	"net/http"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

// PriceResponse is the body of the best LTR price endpoint.
type PriceResponse struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Region   string  `json:"region"`
}

// RegionsResponse is the body of the region discovery endpoint.
type RegionsResponse struct {
	Regions []string `json:"regions"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("error while writing response")
	}
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Error: &message})
}
