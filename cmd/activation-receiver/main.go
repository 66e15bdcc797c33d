// Command activation-receiver is a local collector for the webhook audit
// sink. It decodes each gate-decision event it receives and prints a one-line
// summary, so the event stream can be inspected without a real audit backend.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/VivekBose50/ClinicalNoteTool/internal/activation"
)

func main() {
	addr := flag.String("addr", ":8099", "listen address")
	flag.Parse()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           http.HandlerFunc(handleEvent),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("audit receiver listening on %s, POST gate-decision events to any path", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("receiver error: %v", err)
	}
}

func handleEvent(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var ev activation.Event
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&ev); err != nil {
		log.Printf("discarding payload that is not a gate-decision event: %v", err)
		http.Error(w, "expected a gate-decision event", http.StatusBadRequest)
		return
	}

	log.Printf("decision=%s clinic=%s provider=%s reasons=%v matches=%d total_ms=%.1f",
		ev.Decision, ev.Meta.ClinicID, ev.Meta.Provider, ev.Reasons, ev.MatchCount, ev.TimingMs.Total)

	w.WriteHeader(http.StatusNoContent)
}
