package srvsupport

//
// render.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"
)

type errorResponse struct {
	Error string `json:"error"`
}

// RenderJSON write `v` as JSON. Status set by render.Status is respected.
func RenderJSON(w http.ResponseWriter, r *http.Request, v any) {
	status := http.StatusOK
	if s, ok := r.Context().Value(render.StatusCtxKey).(int); ok {
		status = s
	}

	writeJSON(w, r, status, v)
}

// WriteError write rejection message; plain text unless client send json.
// Empty `msg` is replaced by status text.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if msg == "" {
		msg = http.StatusText(code)
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		writeJSON(w, r, code, errorResponse{msg})

		return
	}

	render.Status(r, code)
	render.PlainText(w, r, msg)
}

// writeJSON encode directly into response without temporary buffer.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msgf("srvsupport: encode json error=%q", err)
	}
}
