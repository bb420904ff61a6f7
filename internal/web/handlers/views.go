package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/collegeapp/registrar/internal/rows"
)

// Tables lists the tables that can be viewed
func (h *Handlers) Tables(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]any{"tables": tableNames()})
}

// ViewTable returns the rows of a table, optionally restricted to ?columns=a,b
// and capped with ?limit=n
func (h *Handlers) ViewTable(w http.ResponseWriter, r *http.Request) {
	var columns []string
	if raw := r.URL.Query().Get("columns"); raw != "" {
		for c := range strings.SplitSeq(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}

	limit := h.viewRowLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	res, err := h.viewer.Table(r.Context(), chi.URLParam(r, "table"), columns, limit)
	if err != nil {
		h.storeError(w, err, "Failed to read table")
		return
	}
	h.jsonResponse(w, http.StatusOK, res)
}

// StudentSchedule returns a student's courses with their instructors
func (h *Handlers) StudentSchedule(w http.ResponseWriter, r *http.Request) {
	studentID, ok := idParam(r, "studentID")
	if !ok {
		h.jsonError(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	exists, err := h.prims.RowExists(r.Context(), rows.Students, rows.F(rows.ColID, studentID))
	if err != nil {
		h.storeError(w, err, "Failed to look up student")
		return
	}
	if !exists {
		h.jsonError(w, "Student not found", http.StatusNotFound)
		return
	}

	schedule, err := h.viewer.StudentSchedule(r.Context(), studentID)
	if err != nil {
		h.storeError(w, err, "Failed to load schedule")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"student_id": studentID, "courses": schedule})
}

func tableNames() []string {
	tables := rows.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = string(t)
	}
	return names
}
