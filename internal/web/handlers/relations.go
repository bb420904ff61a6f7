package handlers

import (
	"context"
	"net/http"

	"github.com/collegeapp/registrar/internal/relations"
	"github.com/collegeapp/registrar/internal/rows"
)

type linkFunc func(ctx context.Context, member relations.Member, courseID int64) (bool, error)

// Enroll links a student to a course
func (h *Handlers) Enroll(w http.ResponseWriter, r *http.Request) {
	h.handleLink(w, r, rows.Students, "studentID", h.relations.Enroll)
}

// Withdraw removes a student from a course
func (h *Handlers) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.handleLink(w, r, rows.Students, "studentID", h.relations.Withdraw)
}

// Assign links an instructor to a course
func (h *Handlers) Assign(w http.ResponseWriter, r *http.Request) {
	h.handleLink(w, r, rows.Instructors, "instructorID", h.relations.Assign)
}

// Unassign removes an instructor from a course
func (h *Handlers) Unassign(w http.ResponseWriter, r *http.Request) {
	h.handleLink(w, r, rows.Instructors, "instructorID", h.relations.Unassign)
}

// handleLink is the common handler for all link mutations. It answers 200
// with changed=false for no-ops so repeated calls are safe.
func (h *Handlers) handleLink(w http.ResponseWriter, r *http.Request, memberTable rows.Table, param string, fn linkFunc) {
	courseID, ok := idParam(r, "courseID")
	if !ok {
		h.jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	memberID, ok := idParam(r, param)
	if !ok {
		h.jsonError(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	exists, err := h.prims.RowExists(r.Context(), memberTable, rows.F(rows.ColID, memberID))
	if err != nil {
		h.storeError(w, err, "Failed to look up member")
		return
	}
	if !exists {
		h.jsonError(w, "Member not found", http.StatusNotFound)
		return
	}

	changed, err := fn(r.Context(), relations.ByID(memberID), courseID)
	if err != nil {
		h.storeError(w, err, "Failed to update relationship")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{
		"course_id": courseID,
		"member_id": memberID,
		"changed":   changed,
	})
}

// CourseMembers lists the students and instructors of a course
func (h *Handlers) CourseMembers(w http.ResponseWriter, r *http.Request) {
	courseID, ok := idParam(r, "courseID")
	if !ok {
		h.jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	students, err := h.relations.StudentsInCourse(r.Context(), courseID)
	if err != nil {
		h.storeError(w, err, "Failed to list students")
		return
	}
	instructors, err := h.relations.InstructorsForCourse(r.Context(), courseID)
	if err != nil {
		h.storeError(w, err, "Failed to list instructors")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{
		"course_id":   courseID,
		"students":    students,
		"instructors": instructors,
	})
}
