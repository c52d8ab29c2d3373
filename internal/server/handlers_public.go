package server

import (
	"net/http"

	"github.com/jonathan/uniadmit/internal/server/middleware"
	"github.com/jonathan/uniadmit/internal/types"
)

func (s *Server) handleFieldCatalog(w http.ResponseWriter, r *http.Request) {
	fields, err := s.svc.FieldCatalog(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	visible := make([]types.FieldConfig, 0, len(fields))
	for _, f := range fields {
		if !f.IsHidden {
			visible = append(visible, f)
		}
	}
	s.jsonResponse(w, http.StatusOK, visible)
}

func (s *Server) handleDocumentCatalog(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.DocumentCatalog(r.Context())
	reply(s, w, http.StatusOK, docs, err)
}

func (s *Server) handlePaymentConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.PaymentConfig(r.Context())
	reply(s, w, http.StatusOK, cfg, err)
}

func (s *Server) handleMajors(w http.ResponseWriter, r *http.Request) {
	majors, err := s.svc.ListMajors(r.Context())
	reply(s, w, http.StatusOK, majors, err)
}

func (s *Server) handlePublicAnnouncements(w http.ResponseWriter, r *http.Request) {
	anns, err := s.svc.ListAnnouncements(r.Context(), true)
	reply(s, w, http.StatusOK, anns, err)
}

func (s *Server) handleSuites(w http.ResponseWriter, r *http.Request) {
	suites, err := s.svc.ListSuites(r.Context())
	reply(s, w, http.StatusOK, suites, err)
}

// handlePublicQuestions serves the corpus without the answer key.
func (s *Server) handlePublicQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.svc.ListQuestions(r.Context(), r.URL.Query().Get("suite"))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	out := make([]types.ExamQuestion, len(questions))
	for i, q := range questions {
		opts := make([]types.QuestionOption, len(q.Options))
		for j, o := range q.Options {
			o.IsCorrect = false
			opts[j] = o
		}
		q.Options = opts
		out[i] = q
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.svc.AvailableSlots(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	for i := range slots {
		slots[i].Groups = nil
	}
	s.jsonResponse(w, http.StatusOK, slots)
}

// handleStaffLogin signs a staff user in by username. There are no
// credentials; the token only carries the chosen identity and role.
func (s *Server) handleStaffLogin(w http.ResponseWriter, r *http.Request) {
	var req types.StaffLoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}

	user, err := s.svc.FindStaff(r.Context(), req.Username)
	if err != nil {
		if types.IsNotFound(err) {
			err = &ErrInvalidCredentials{}
		}
		s.serviceError(w, err)
		return
	}
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.StaffLoginResponse{User: user, Token: token})
}

func (s *Server) handleStaffMe(w http.ResponseWriter, r *http.Request) {
	staff, err := middleware.GetStaff(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := s.svc.FindStaff(r.Context(), staff.ID)
	reply(s, w, http.StatusOK, user, err)
}
