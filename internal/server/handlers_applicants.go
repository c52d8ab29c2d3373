package server

import (
	"net/http"

	"github.com/jonathan/uniadmit/internal/types"
)

// applicantView is what the applicant portal shows: the published status
// and none of the staff annotations. While the published status is SUBMITTED
// the review outcome is not out yet, so reviewed documents read as uploaded
// and field rejections are withheld.
func applicantView(a types.Applicant) types.Applicant {
	if a.LastNotifiedStatus != "" {
		a.Status = a.LastNotifiedStatus
	}
	if a.Status == types.StatusSubmitted {
		a = a.Clone()
		for id, doc := range a.Documents {
			if doc.Status == types.DocApproved || doc.Status == types.DocRejected {
				doc.Status = types.DocUploaded
			}
			doc.ReviewNote = ""
			doc.Returned = false
			a.Documents[id] = doc
		}
		a.FieldRejections = map[string]string{}
	}
	a.ExamGrading = nil
	a.RankingScore = 0
	a.IsStarred = false
	a.ReviewerID = ""
	a.Evaluation = nil
	return a
}

func (s *Server) applicantReply(w http.ResponseWriter, status int, a types.Applicant, err error) {
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, status, applicantView(a))
}

func (s *Server) handleCreateApplicant(w http.ResponseWriter, r *http.Request) {
	var req types.CreateApplicantRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.CreateApplicant(r.Context(), req)
	s.applicantReply(w, http.StatusCreated, a, err)
}

func (s *Server) handleGetOwnApplication(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.GetApplicant(r.Context(), r.PathValue("id"))
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.ProfileUpdate
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.UpdateProfile(r.Context(), r.PathValue("id"), req)
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleAddEducation(w http.ResponseWriter, r *http.Request) {
	var req types.EducationInput
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.AddEducation(r.Context(), r.PathValue("id"), req)
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleUpdateEducation(w http.ResponseWriter, r *http.Request) {
	var req types.EducationInput
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.UpdateEducation(r.Context(), r.PathValue("id"), r.PathValue("educationID"), req)
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleRemoveEducation(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.RemoveEducation(r.Context(), r.PathValue("id"), r.PathValue("educationID"))
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	var req types.UploadRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.UploadDocument(r.Context(), r.PathValue("id"), r.PathValue("docID"), req)
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.RemoveDocument(r.Context(), r.PathValue("id"), r.PathValue("docID"))
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleAnswerQuestion(w http.ResponseWriter, r *http.Request) {
	var req types.AnswerRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.AnswerQuestion(r.Context(), r.PathValue("id"), r.PathValue("questionID"), req.Answer)
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleExamProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.svc.ExamProgress(r.Context(), r.PathValue("id"))
	reply(s, w, http.StatusOK, progress, err)
}

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	var req types.SignRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.svc.Sign(r.Context(), r.PathValue("id"), req)
	s.applicantReply(w, http.StatusOK, a, err)
}

// handleConfirmPayment receives the payment provider's confirmation for one fee track.
func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req types.PaymentConfirmation
	if !s.decode(w, r, &req) {
		return
	}
	track := types.FeeTrack(r.PathValue("track"))
	a, err := s.svc.ConfirmPayment(r.Context(), r.PathValue("id"), track, req)
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.svc.Receipt(r.Context(), r.PathValue("id"), types.FeeTrack(r.PathValue("track")))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receipt))
}

func (s *Server) handleSubmitBlockers(w http.ResponseWriter, r *http.Request) {
	blockers, err := s.svc.SubmitBlockers(r.Context(), r.PathValue("id"))
	if blockers == nil {
		blockers = []string{}
	}
	reply(s, w, http.StatusOK, map[string][]string{"blockers": blockers}, err)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Submit(r.Context(), r.PathValue("id"))
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleBookInterview(w http.ResponseWriter, r *http.Request) {
	var req types.BookRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.serviceError(w, err)
		return
	}
	a, err := s.svc.BookInterview(r.Context(), r.PathValue("id"), req.SlotID)
	s.applicantReply(w, http.StatusOK, a, err)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Enroll(r.Context(), r.PathValue("id"))
	s.applicantReply(w, http.StatusOK, a, err)
}
