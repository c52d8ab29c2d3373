package server

import (
	"net/http"

	"github.com/jonathan/uniadmit/internal/types"
)

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListStaff(r.Context())
	reply(s, w, http.StatusOK, users, err)
}

func (s *Server) handleSaveFieldCatalog(w http.ResponseWriter, r *http.Request) {
	var fields []types.FieldConfig
	if !s.decode(w, r, &fields) {
		return
	}
	saved, err := s.svc.SaveFieldCatalog(r.Context(), fields)
	reply(s, w, http.StatusOK, saved, err)
}

// handleSaveDocumentCatalog replaces the document catalog. Draft
// applications pick up the change immediately.
func (s *Server) handleSaveDocumentCatalog(w http.ResponseWriter, r *http.Request) {
	var docs []types.DocumentConfig
	if !s.decode(w, r, &docs) {
		return
	}
	saved, err := s.svc.SaveDocumentCatalog(r.Context(), docs)
	reply(s, w, http.StatusOK, saved, err)
}

func (s *Server) handleSavePaymentConfig(w http.ResponseWriter, r *http.Request) {
	var cfg types.PaymentConfig
	if !s.decode(w, r, &cfg) {
		return
	}
	saved, err := s.svc.SavePaymentConfig(r.Context(), cfg)
	reply(s, w, http.StatusOK, saved, err)
}

// handleStaffQuestions serves the corpus with the answer key.
func (s *Server) handleStaffQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.svc.ListQuestions(r.Context(), r.URL.Query().Get("suite"))
	reply(s, w, http.StatusOK, questions, err)
}

func (s *Server) handleSaveSuite(w http.ResponseWriter, r *http.Request) {
	var suite types.ExamSuite
	if !s.decode(w, r, &suite) {
		return
	}
	saved, err := s.svc.SaveSuite(r.Context(), suite)
	reply(s, w, http.StatusOK, saved, err)
}

func (s *Server) handleDeleteSuite(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSuite(r.Context(), r.PathValue("suiteID")); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveQuestion(w http.ResponseWriter, r *http.Request) {
	var q types.ExamQuestion
	if !s.decode(w, r, &q) {
		return
	}
	saved, err := s.svc.SaveQuestion(r.Context(), q)
	reply(s, w, http.StatusOK, saved, err)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteQuestion(r.Context(), r.PathValue("questionID")); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStaffAnnouncements(w http.ResponseWriter, r *http.Request) {
	anns, err := s.svc.ListAnnouncements(r.Context(), false)
	reply(s, w, http.StatusOK, anns, err)
}

func (s *Server) handleSaveAnnouncement(w http.ResponseWriter, r *http.Request) {
	var ann types.Announcement
	if !s.decode(w, r, &ann) {
		return
	}
	saved, err := s.svc.SaveAnnouncement(r.Context(), ann)
	reply(s, w, http.StatusOK, saved, err)
}

func (s *Server) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteAnnouncement(r.Context(), r.PathValue("announcementID")); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.svc.ListSlots(r.Context())
	reply(s, w, http.StatusOK, slots, err)
}

func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	var in types.SlotInput
	if !s.decode(w, r, &in) {
		return
	}
	slot, err := s.svc.CreateSlot(r.Context(), in)
	reply(s, w, http.StatusCreated, slot, err)
}

func (s *Server) handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	var in types.SlotInput
	if !s.decode(w, r, &in) {
		return
	}
	slot, err := s.svc.UpdateSlot(r.Context(), r.PathValue("slotID"), in)
	reply(s, w, http.StatusOK, slot, err)
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSlot(r.Context(), r.PathValue("slotID")); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnassigned(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Unassigned(r.Context(), r.PathValue("slotID"))
	reply(s, w, http.StatusOK, map[string][]string{"applicant_ids": ids}, err)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.svc.CreateGroup(r.Context(), r.PathValue("slotID"))
	reply(s, w, http.StatusCreated, group, err)
}

func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	var req types.GroupRequest
	if !s.decode(w, r, &req) {
		return
	}
	slot, err := s.svc.RenameGroup(r.Context(), r.PathValue("slotID"), r.PathValue("groupID"), req.Name)
	reply(s, w, http.StatusOK, slot, err)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	slot, err := s.svc.DeleteGroup(r.Context(), r.PathValue("slotID"), r.PathValue("groupID"))
	reply(s, w, http.StatusOK, slot, err)
}

func (s *Server) memberRequest(w http.ResponseWriter, r *http.Request) (types.MemberRequest, bool) {
	var req types.MemberRequest
	if !s.decode(w, r, &req) {
		return req, false
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return req, false
	}
	return req, true
}

func (s *Server) handleAssignToGroup(w http.ResponseWriter, r *http.Request) {
	req, ok := s.memberRequest(w, r)
	if !ok {
		return
	}
	slot, err := s.svc.AssignToGroup(r.Context(), r.PathValue("slotID"), r.PathValue("groupID"), req.ApplicantID)
	reply(s, w, http.StatusOK, slot, err)
}

func (s *Server) handleMoveWithinGroup(w http.ResponseWriter, r *http.Request) {
	req, ok := s.memberRequest(w, r)
	if !ok {
		return
	}
	slot, err := s.svc.MoveWithinGroup(r.Context(), r.PathValue("slotID"), r.PathValue("groupID"), req.ApplicantID, req.Direction)
	reply(s, w, http.StatusOK, slot, err)
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	slot, err := s.svc.Unassign(r.Context(), r.PathValue("slotID"), r.PathValue("applicantID"))
	reply(s, w, http.StatusOK, slot, err)
}
