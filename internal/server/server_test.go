package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/uniadmit/internal/admission"
	"github.com/jonathan/uniadmit/internal/catalog"
	"github.com/jonathan/uniadmit/internal/config"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

type testServer struct {
	*Server
	svc *admission.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	var n atomic.Int64
	svc := admission.New(store.NewMemory(),
		admission.WithClock(func() time.Time { return fixed }),
		admission.WithIDGenerator(func() string { return fmt.Sprintf("id_%d", n.Add(1)) }),
	)
	require.NoError(t, svc.Seed(context.Background(), catalog.Defaults(fixed), false))

	jwtService := NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 1})
	return &testServer{Server: New(Config{Port: 0}, svc, jwtService, nil), svc: svc}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/staff/login", types.StaffLoginRequest{Username: username}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp types.StaffLoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeApplicant(t *testing.T, w *httptest.ResponseRecorder) types.Applicant {
	t.Helper()
	var a types.Applicant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a), w.Body.String())
	return a
}

func ptr[T any](v T) *T { return &v }

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodOptions, "/applicants", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestStaffLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/staff/login", types.StaffLoginRequest{Username: "nobody"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/staff/login", types.StaffLoginRequest{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := s.login(t, "reviewer1")
	w = s.do(t, http.MethodGet, "/staff/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var me types.StaffUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "reviewer_1", me.ID)
	assert.Equal(t, types.RoleReviewer, me.Role)
}

func TestStaffRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/staff/applicants", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/staff/applicants", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGating(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "superadmin")
	reviewer := s.login(t, "reviewer1")
	proctor := s.login(t, "proctor1")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		token  string
		want   int
	}{
		{"proctor cannot decide", http.MethodPost, "/staff/applicants/x/decision", types.DecisionRequest{Outcome: "pass"}, proctor, http.StatusForbidden},
		{"reviewer cannot edit catalog", http.MethodPut, "/staff/catalog/fields", []types.FieldConfig{}, reviewer, http.StatusForbidden},
		{"reviewer cannot publish", http.MethodPost, "/staff/publish", nil, reviewer, http.StatusForbidden},
		{"proctor can list applicants", http.MethodGet, "/staff/applicants", nil, proctor, http.StatusOK},
		{"admin lists staff", http.MethodGet, "/staff/users", nil, admin, http.StatusOK},
		{"reviewer decides unknown applicant", http.MethodPost, "/staff/applicants/x/decision", types.DecisionRequest{Outcome: "pass"}, reviewer, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestPublicCatalogHidesStaffData(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/exam/questions?suite=suite_apt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var questions []types.ExamQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	require.Len(t, questions, 2)
	for _, q := range questions {
		for _, o := range q.Options {
			assert.False(t, o.IsCorrect, "question %s option %s", q.ID, o.ID)
		}
	}

	w = s.do(t, http.MethodGet, "/slots/available", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var slots []types.InterviewSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	assert.Len(t, slots, 2)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/applicants", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/applicants/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	admin := s.login(t, "superadmin")
	w = s.do(t, http.MethodGet, "/staff/applicants?status=BOGUS", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/applicants", types.CreateApplicantRequest{FullName: "Somchai Dee", Email: "somchai@example.com"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decodeApplicant(t, w)
	base := "/applicants/" + a.ID

	w = s.do(t, http.MethodPost, base+"/submit", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPatch, base+"/profile", types.ProfileUpdate{
		Age:             ptr(19),
		Phone:           ptr("0812345678"),
		Address:         ptr("Bangkok"),
		Recommendations: []string{"Teacher A", "Teacher B", "Teacher C"},
		CustomData: map[string]types.FieldValue{
			"cf_1": {Text: "Chai"},
			"cf_2": {NoScore: true},
		},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, base+"/educations", types.EducationInput{Level: "high_school", Institution: "Triam Udom"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a = decodeApplicant(t, w)
	require.NotEmpty(t, a.Documents)

	for id := range a.Documents {
		w = s.do(t, http.MethodPut, base+"/documents/"+id, types.UploadRequest{FileRef: "files/" + id}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	answers := map[string]types.Answer{
		"q1": types.TextAnswer("o3"),
		"q2": types.OptionsAnswer("o1", "o2", "o4"),
		"q3": types.TextAnswer("To learn."),
		"q4": types.TextAnswer("a1"),
	}
	for qid, ans := range answers {
		w = s.do(t, http.MethodPut, base+"/answers/"+qid, types.AnswerRequest{Answer: ans}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, base+"/signature", types.SignRequest{SignatureRef: "sig.png"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, base+"/blockers", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"blockers":["application fee unpaid"]}`, w.Body.String())

	w = s.do(t, http.MethodPost, base+"/payments/application", types.PaymentConfirmation{Reference: "ref-app", Method: "kplus"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, base+"/receipts/application", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "ref-app")

	w = s.do(t, http.MethodPost, base+"/submit", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.StatusSubmitted, decodeApplicant(t, w).Status)

	reviewer := s.login(t, "reviewer1")
	for id := range a.Documents {
		w = s.do(t, http.MethodPost, "/staff"+base+"/documents/"+id+"/review", types.ReviewDocumentRequest{Approve: true}, reviewer)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodPost, "/staff"+base+"/review/complete", nil, reviewer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	staffView := decodeApplicant(t, w)
	assert.Equal(t, types.StatusDocsApproved, staffView.Status)
	assert.Equal(t, "reviewer_1", staffView.ReviewerID)

	// Staff transitions stay hidden from the applicant until published.
	w = s.do(t, http.MethodGet, base, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	own := decodeApplicant(t, w)
	assert.Equal(t, types.StatusSubmitted, own.Status)
	assert.Empty(t, own.ReviewerID)
	for id, doc := range own.Documents {
		assert.Equal(t, types.DocUploaded, doc.Status, "verdict on %s is unpublished", id)
	}

	admin := s.login(t, "superadmin")
	w = s.do(t, http.MethodPost, "/staff/publish", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"published":1}`, w.Body.String())

	w = s.do(t, http.MethodGet, base, nil, "")
	own = decodeApplicant(t, w)
	assert.Equal(t, types.StatusDocsApproved, own.Status)
	for id, doc := range own.Documents {
		assert.Equal(t, types.DocApproved, doc.Status, "verdict on %s is published", id)
	}

	w = s.do(t, http.MethodGet, "/staff/applicants?status=DOCS_APPROVED", nil, reviewer)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []types.Applicant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, a.ID, listed[0].ID)

	w = s.do(t, http.MethodPost, base+"/payments/interview", types.PaymentConfirmation{Reference: "ref-int", Method: "qrcode"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.StatusInterviewReady, decodeApplicant(t, w).Status)

	w = s.do(t, http.MethodPost, base+"/interview", types.BookRequest{SlotID: "slot_2"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	booked := decodeApplicant(t, w)
	assert.Equal(t, types.StatusInterviewBooked, booked.Status)
	assert.Equal(t, "slot_2", booked.InterviewSlotID)

	w = s.do(t, http.MethodPost, "/staff/slots/slot_2/groups", nil, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var group types.InterviewGroup
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &group))

	w = s.do(t, http.MethodGet, "/staff/slots/slot_2/unassigned", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"applicant_ids":[%q]}`, a.ID), w.Body.String())

	w = s.do(t, http.MethodPost, "/staff/slots/slot_2/groups/"+group.ID+"/members", types.MemberRequest{ApplicantID: a.ID}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var slot types.InterviewSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	require.Len(t, slot.Groups, 1)
	assert.Equal(t, []string{a.ID}, slot.Groups[0].ApplicantIDs)

	w = s.do(t, http.MethodPost, "/staff"+base+"/decision", types.DecisionRequest{Outcome: types.DecisionPass}, reviewer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.StatusPassed, decodeApplicant(t, w).Status)

	w = s.do(t, http.MethodPost, base+"/enroll", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "tuition still unpaid")
}

func TestSlotAdministration(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "superadmin")

	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	in := types.SlotInput{Start: start, End: start.Add(2 * time.Hour), Location: "Room 3", Type: types.InterviewOnsite, Capacity: 4}
	w := s.do(t, http.MethodPost, "/staff/slots", in, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var slot types.InterviewSlot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Equal(t, 4, slot.Capacity)

	in.Capacity = 0
	w = s.do(t, http.MethodPut, "/staff/slots/"+slot.ID, in, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/staff/slots/"+slot.ID, nil, admin)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/staff/slots/"+slot.ID, nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicantViewWithholdsUnpublishedReview(t *testing.T) {
	a := types.NewApplicant("app_1", time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	a.Status = types.StatusDocsRejected
	a.LastNotifiedStatus = types.StatusSubmitted
	a.Documents["doc_id"] = types.DocumentItem{ID: "doc_id", Status: types.DocRejected, ReviewNote: "blurry", Returned: true, FileRef: "id.png"}
	a.Documents["doc_pic"] = types.DocumentItem{ID: "doc_pic", Status: types.DocApproved, FileRef: "pic.png"}
	a.FieldRejections[types.FieldIDPhone] = "unreachable"

	view := applicantView(a)
	assert.Equal(t, types.StatusSubmitted, view.Status)
	assert.Equal(t, types.DocumentItem{ID: "doc_id", Status: types.DocUploaded, FileRef: "id.png"}, view.Documents["doc_id"])
	assert.Equal(t, types.DocUploaded, view.Documents["doc_pic"].Status)
	assert.Empty(t, view.FieldRejections)
	assert.Equal(t, types.DocRejected, a.Documents["doc_id"].Status, "the stored record is untouched")
	assert.Len(t, a.FieldRejections, 1)

	a.LastNotifiedStatus = types.StatusDocsRejected
	view = applicantView(a)
	assert.Equal(t, types.StatusDocsRejected, view.Status)
	assert.Equal(t, "blurry", view.Documents["doc_id"].ReviewNote)
	assert.Equal(t, types.DocRejected, view.Documents["doc_id"].Status)
	assert.Equal(t, "unreachable", view.FieldRejections[types.FieldIDPhone])
}
