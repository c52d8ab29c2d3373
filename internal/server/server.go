package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/uniadmit/internal/admission"
	"github.com/jonathan/uniadmit/internal/server/middleware"
	"github.com/jonathan/uniadmit/internal/server/ratelimit"
	"github.com/jonathan/uniadmit/internal/types"
)

const maxBodyBytes = 1 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	svc         *admission.Service
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	corsOrigin  string
}

// Config holds server configuration
type Config struct {
	Port       int
	CORSOrigin string
}

var (
	admins    = []types.StaffRole{types.RoleSuperAdmin}
	reviewers = []types.StaffRole{types.RoleSuperAdmin, types.RoleReviewer}
)

// New creates a server over svc. A nil limiter meters nothing.
func New(cfg Config, svc *admission.Service, jwtService *JWTService, limiter *ratelimit.Limiter) *Server {
	if limiter == nil {
		limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	s := &Server{
		svc:         svc,
		jwtService:  jwtService,
		rateLimiter: limiter,
		corsOrigin:  origin,
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	staff := func(pattern string, h http.HandlerFunc, roles ...types.StaffRole) {
		var handler http.Handler = h
		if len(roles) > 0 {
			handler = middleware.RequireRole(roles...)(handler)
		}
		mux.Handle(pattern, auth(handler))
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	// Public catalogs
	mux.HandleFunc("GET /catalog/fields", s.handleFieldCatalog)
	mux.HandleFunc("GET /catalog/documents", s.handleDocumentCatalog)
	mux.HandleFunc("GET /catalog/payment", s.handlePaymentConfig)
	mux.HandleFunc("GET /catalog/majors", s.handleMajors)
	mux.HandleFunc("GET /announcements", s.handlePublicAnnouncements)
	mux.HandleFunc("GET /exam/suites", s.handleSuites)
	mux.HandleFunc("GET /exam/questions", s.handlePublicQuestions)
	mux.HandleFunc("GET /slots/available", s.handleAvailableSlots)

	// Applicant portal
	mux.HandleFunc("POST /applicants", s.handleCreateApplicant)
	mux.HandleFunc("GET /applicants/{id}", s.handleGetOwnApplication)
	mux.HandleFunc("PATCH /applicants/{id}/profile", s.handleUpdateProfile)
	mux.HandleFunc("POST /applicants/{id}/educations", s.handleAddEducation)
	mux.HandleFunc("PUT /applicants/{id}/educations/{educationID}", s.handleUpdateEducation)
	mux.HandleFunc("DELETE /applicants/{id}/educations/{educationID}", s.handleRemoveEducation)
	mux.HandleFunc("PUT /applicants/{id}/documents/{docID}", s.handleUploadDocument)
	mux.HandleFunc("DELETE /applicants/{id}/documents/{docID}", s.handleRemoveDocument)
	mux.HandleFunc("PUT /applicants/{id}/answers/{questionID}", s.handleAnswerQuestion)
	mux.HandleFunc("GET /applicants/{id}/exam", s.handleExamProgress)
	mux.HandleFunc("POST /applicants/{id}/signature", s.handleSign)
	mux.HandleFunc("POST /applicants/{id}/payments/{track}", s.handleConfirmPayment)
	mux.HandleFunc("GET /applicants/{id}/receipts/{track}", s.handleReceipt)
	mux.HandleFunc("GET /applicants/{id}/blockers", s.handleSubmitBlockers)
	mux.HandleFunc("POST /applicants/{id}/submit", s.handleSubmit)
	mux.HandleFunc("POST /applicants/{id}/interview", s.handleBookInterview)
	mux.HandleFunc("POST /applicants/{id}/enroll", s.handleEnroll)

	// Staff session
	mux.HandleFunc("POST /staff/login", s.handleStaffLogin)
	staff("GET /staff/me", s.handleStaffMe)

	// Review and decisions
	staff("GET /staff/applicants", s.handleListApplicants)
	staff("GET /staff/applicants/{id}", s.handleGetApplicant)
	staff("GET /staff/applicants/{id}/exam", s.handleExamBreakdown)
	staff("PUT /staff/applicants/{id}/grades/{questionID}", s.handleGradeEssay)
	staff("POST /staff/applicants/{id}/documents/{docID}/review", s.handleReviewDocument, reviewers...)
	staff("POST /staff/applicants/{id}/documents", s.handleAttachDocument, reviewers...)
	staff("PUT /staff/applicants/{id}/field-rejections", s.handleSetFieldRejection, reviewers...)
	staff("DELETE /staff/applicants/{id}/field-rejections/{fieldID}", s.handleClearFieldRejection, reviewers...)
	staff("POST /staff/applicants/{id}/review/complete", s.handleCompleteReview, reviewers...)
	staff("POST /staff/applicants/{id}/decision", s.handleDecide, reviewers...)
	staff("PATCH /staff/applicants/{id}/annotations", s.handleAnnotate, reviewers...)
	staff("PUT /staff/applicants/{id}/fees/{track}", s.handleOverrideFee, admins...)
	staff("POST /staff/applicants/{id}/transfer", s.handleTransferInterview, admins...)
	staff("POST /staff/publish", s.handlePublish, admins...)
	staff("POST /staff/reconcile", s.handleReconcile, admins...)

	// Catalog administration
	staff("GET /staff/users", s.handleListStaff, admins...)
	staff("PUT /staff/catalog/fields", s.handleSaveFieldCatalog, admins...)
	staff("PUT /staff/catalog/documents", s.handleSaveDocumentCatalog, admins...)
	staff("PUT /staff/catalog/payment", s.handleSavePaymentConfig, admins...)
	staff("GET /staff/exam/questions", s.handleStaffQuestions)
	staff("PUT /staff/exam/suites", s.handleSaveSuite, admins...)
	staff("DELETE /staff/exam/suites/{suiteID}", s.handleDeleteSuite, admins...)
	staff("PUT /staff/exam/questions", s.handleSaveQuestion, admins...)
	staff("DELETE /staff/exam/questions/{questionID}", s.handleDeleteQuestion, admins...)
	staff("GET /staff/announcements", s.handleStaffAnnouncements, admins...)
	staff("PUT /staff/announcements", s.handleSaveAnnouncement, admins...)
	staff("DELETE /staff/announcements/{announcementID}", s.handleDeleteAnnouncement, admins...)

	// Interview slots
	staff("GET /staff/slots", s.handleListSlots)
	staff("POST /staff/slots", s.handleCreateSlot, admins...)
	staff("PUT /staff/slots/{slotID}", s.handleUpdateSlot, admins...)
	staff("DELETE /staff/slots/{slotID}", s.handleDeleteSlot, admins...)
	staff("GET /staff/slots/{slotID}/unassigned", s.handleUnassigned)
	staff("POST /staff/slots/{slotID}/groups", s.handleCreateGroup, admins...)
	staff("PUT /staff/slots/{slotID}/groups/{groupID}", s.handleRenameGroup, admins...)
	staff("DELETE /staff/slots/{slotID}/groups/{groupID}", s.handleDeleteGroup, admins...)
	staff("POST /staff/slots/{slotID}/groups/{groupID}/members", s.handleAssignToGroup, admins...)
	staff("POST /staff/slots/{slotID}/groups/{groupID}/move", s.handleMoveWithinGroup, admins...)
	staff("DELETE /staff/slots/{slotID}/members/{applicantID}", s.handleUnassign, admins...)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	log.Println("[server] stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their limit with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// clientID is the remote IP without its port.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}
	log.Printf("[rate-limit] limit exceeded: limit=%d reset=%s", info.Limit, info.ResetTime.Format(time.RFC3339))
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps an admission error onto its status code. Internal
// errors are logged and not echoed.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// reply writes v with status, or the error.
func reply[T any](s *Server, w http.ResponseWriter, status int, v T, err error) {
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, status, v)
}
