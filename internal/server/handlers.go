package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/example/pebble/internal/app"
	"github.com/example/pebble/internal/ports/primary"
	"github.com/example/pebble/internal/ports/secondary"
)

const maxBody = 1 << 20

// HandleHealth reports liveness.
func (d *Deps) HandleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{"ok": true})
}

// HandleMutate rewrites {text, stage} into a decayed sentence.
func (d *Deps) HandleMutate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text  any             `json:"text"`
		Stage json.RawMessage `json:"stage"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, app.ErrTextRequired.Error(), http.StatusBadRequest)
		return
	}

	result, err := d.Rewrite.Mutate(r.Context(), primary.MutateRequest{Text: body.Text, Stage: stageValue(body.Stage)})
	switch {
	case errors.Is(err, app.ErrTextRequired), errors.Is(err, app.ErrInvalidStage):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		d.Logger.Error("mutate failed", zap.Error(err))
		jsonError(w, "mutate failed", http.StatusInternalServerError)
		return
	}

	jsonOK(w, map[string]any{"ok": true, "result": result})
}

// stageValue decodes the raw stage field. A missing field stays nil and is
// rejected; an explicit null counts as stage 0.
func stageValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	if v == nil {
		return 0.0
	}
	return v
}

type stoneJSON struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
	Finished time.Time `json:"finished"`
	DayCount int       `json:"dayCount"`
	Badge    string    `json:"badge"`
}

// HandleArchiveList returns finished stones, newest first, without images.
func (d *Deps) HandleArchiveList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	stones, err := d.Archive.Archive(r.Context(), limit)
	if err != nil {
		d.Logger.Error("archive list failed", zap.Error(err))
		jsonError(w, "archive unavailable", http.StatusInternalServerError)
		return
	}

	out := make([]stoneJSON, len(stones))
	for i, s := range stones {
		out[i] = stoneJSON{ID: s.ID, Text: s.Text, Created: s.Created, Finished: s.Finished, DayCount: s.DayCount, Badge: s.Badge()}
	}
	jsonOK(w, map[string]any{"ok": true, "stones": out})
}

// HandleSnapshot serves a stone's PNG snapshot.
func (d *Deps) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	stone, err := d.Archive.Stone(r.Context(), r.PathValue("id"))
	if errors.Is(err, secondary.ErrNotFound) {
		jsonError(w, "stone not found", http.StatusNotFound)
		return
	}
	if err != nil {
		d.Logger.Error("snapshot lookup failed", zap.Error(err))
		jsonError(w, "archive unavailable", http.StatusInternalServerError)
		return
	}
	if len(stone.Snapshot) == 0 {
		jsonError(w, "stone has no snapshot", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(stone.Snapshot)
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
}
