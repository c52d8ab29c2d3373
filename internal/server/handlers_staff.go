package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/uniadmit/internal/server/middleware"
	"github.com/jonathan/uniadmit/internal/types"
)

// staffID returns the authenticated staff id, or "" outside a staff route.
func staffID(r *http.Request) string {
	staff, err := middleware.GetStaff(r)
	if err != nil {
		return ""
	}
	return staff.ID
}

// parseApplicantFilter reads ?status=, ?q= and ?starred= from the query string.
func parseApplicantFilter(r *http.Request) (types.ApplicantFilter, error) {
	q := r.URL.Query()
	filter := types.ApplicantFilter{Query: q.Get("q")}
	if raw := q.Get("status"); raw != "" {
		status, err := types.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if raw := q.Get("starred"); raw != "" {
		starred, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, &types.ValidationError{Field: "starred", Message: "must be true or false"}
		}
		filter.Starred = starred
	}
	return filter, nil
}

func (s *Server) handleListApplicants(w http.ResponseWriter, r *http.Request) {
	filter, err := parseApplicantFilter(r)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	applicants, err := s.svc.ListApplicants(r.Context(), filter)
	if applicants == nil {
		applicants = []types.Applicant{}
	}
	reply(s, w, http.StatusOK, applicants, err)
}

func (s *Server) handleGetApplicant(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.GetApplicant(r.Context(), r.PathValue("id"))
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleExamBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.svc.ExamBreakdown(r.Context(), r.PathValue("id"))
	reply(s, w, http.StatusOK, breakdown, err)
}

func (s *Server) handleGradeEssay(w http.ResponseWriter, r *http.Request) {
	var req types.GradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.GradeEssay(r.Context(), r.PathValue("id"), r.PathValue("questionID"), req.Score)
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleReviewDocument(w http.ResponseWriter, r *http.Request) {
	var req types.ReviewDocumentRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.ReviewDocument(r.Context(), staffID(r), r.PathValue("id"), r.PathValue("docID"), req)
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	var req types.AttachDocumentRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.AttachDocument(r.Context(), staffID(r), r.PathValue("id"), req)
	reply(s, w, http.StatusCreated, a, err)
}

func (s *Server) handleSetFieldRejection(w http.ResponseWriter, r *http.Request) {
	var req types.FieldRejectionRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.SetFieldRejection(r.Context(), r.PathValue("id"), req)
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleClearFieldRejection(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.ClearFieldRejection(r.Context(), r.PathValue("id"), r.PathValue("fieldID"))
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.CompleteReview(r.Context(), r.PathValue("id"))
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req types.DecisionRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.Decide(r.Context(), r.PathValue("id"), req)
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req types.AnnotateRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.Annotate(r.Context(), r.PathValue("id"), req)
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleOverrideFee(w http.ResponseWriter, r *http.Request) {
	var req types.FeeOverrideRequest
	if !s.decode(w, r, &req) {
		return
	}
	track := types.FeeTrack(r.PathValue("track"))
	a, err := s.svc.OverrideFee(r.Context(), staffID(r), r.PathValue("id"), track, req)
	reply(s, w, http.StatusOK, a, err)
}

func (s *Server) handleTransferInterview(w http.ResponseWriter, r *http.Request) {
	var req types.BookRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}
	a, err := s.svc.TransferInterview(r.Context(), r.PathValue("id"), req.SlotID)
	reply(s, w, http.StatusOK, a, err)
}

// handlePublish notifies every applicant of their current status.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	changed, err := s.svc.PublishAll(r.Context())
	reply(s, w, http.StatusOK, map[string]int{"published": changed}, err)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	changed, err := s.svc.ReconcileAll(r.Context())
	reply(s, w, http.StatusOK, map[string]int{"reconciled": changed}, err)
}
