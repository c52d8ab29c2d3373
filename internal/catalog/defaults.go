// Package catalog holds the default admin catalogs a fresh installation is
// seeded with.
package catalog

import (
	"strconv"
	"time"

	"github.com/jonathan/uniadmit/internal/types"
)

// EducationConfigID is the document catalog entry that expands into one
// certificate per education record.
const EducationConfigID = "edu"

// DefaultCurrency is the currency of the default fee amounts.
const DefaultCurrency = "THB"

// Seed bundles every seeded collection.
type Seed struct {
	FieldConfigs    []types.FieldConfig    `json:"field_configs"`
	DocumentConfigs []types.DocumentConfig `json:"document_configs"`
	PaymentConfig   types.PaymentConfig    `json:"payment_config"`
	ExamSuites      []types.ExamSuite      `json:"exam_suites"`
	ExamQuestions   []types.ExamQuestion   `json:"exam_questions"`
	InterviewSlots  []types.InterviewSlot  `json:"interview_slots"`
	Announcements   []types.Announcement   `json:"announcements"`
	StaffUsers      []types.StaffUser      `json:"staff_users"`
	EducationMajors []types.EducationMajor `json:"education_majors"`
	Applicants      []types.Applicant      `json:"applicants,omitempty"`
}

// Defaults returns the default seed. now stamps the announcement.
func Defaults(now time.Time) Seed {
	return Seed{
		FieldConfigs:    FieldConfigs(),
		DocumentConfigs: DocumentConfigs(),
		PaymentConfig:   PaymentConfig(),
		ExamSuites:      ExamSuites(),
		ExamQuestions:   ExamQuestions(),
		InterviewSlots:  InterviewSlots(),
		Announcements: []types.Announcement{{
			ID:        "ann_1",
			Title:     "System Announcement",
			Content:   "The admission deadline is approaching (Dec 31st). Please ensure all documents are submitted.",
			Date:      now.UTC(),
			IsVisible: true,
		}},
		StaffUsers:      StaffUsers(),
		EducationMajors: EducationMajors(),
	}
}

// FieldConfigs returns the default profile field catalog.
func FieldConfigs() []types.FieldConfig {
	standard := func(id, label string, order int) types.FieldConfig {
		return types.FieldConfig{ID: id, Label: label, Kind: types.FieldStandard, IsStandard: true, Order: order}
	}
	return []types.FieldConfig{
		standard(types.FieldIDFullName, "Full Name", 0),
		standard(types.FieldIDBirthDate, "Date of Birth", 1),
		standard(types.FieldIDAge, "Age", 2),
		standard(types.FieldIDGender, "Gender", 3),
		standard(types.FieldIDPhone, "Phone", 4),
		standard(types.FieldIDEmail, "Email", 5),
		standard(types.FieldIDAddress, "Address", 6),
		standard(types.FieldIDEducations, "Education History", 7),
		{ID: "cf_1", Label: "Nickname", Kind: types.FieldText, Order: 8},
		{
			ID:          "cf_2",
			Label:       "English Score",
			Kind:        types.FieldScore,
			Order:       9,
			Description: "Please submit your official score.",
			Options:     []string{"TOEFL iBT", "TOEFL ITP", "IELTS", "CU-TEP"},
			ScoreRanges: []types.ScoreRange{
				{Exam: "TOEFL iBT", Min: 0, Max: 120},
				{Exam: "TOEFL ITP", Min: 310, Max: 677},
				{Exam: "IELTS", Min: 0, Max: 9},
				{Exam: "CU-TEP", Min: 0, Max: 120},
			},
			AllowNoScore: true,
		},
		{
			ID:          types.FieldIDRecommendations,
			Label:       "Letter of Recommendation",
			Kind:        types.FieldStandard,
			IsStandard:  true,
			Order:       10,
			Description: "Please provide names of your recommenders.",
			ItemCount:   types.DefaultRecommendationCount,
		},
	}
}

// DocumentConfigs returns the default document catalog.
func DocumentConfigs() []types.DocumentConfig {
	return []types.DocumentConfig{
		{ID: "pic", Label: "Profile Picture", IsStandard: true, Order: 0},
		{ID: "id", Label: "ID Card Copy", IsStandard: true, Order: 1},
		{ID: EducationConfigID, Label: "Education Certificate", IsStandard: true, Order: 2, LinksEducation: true},
		{ID: "eng", Label: "English Score Report", IsStandard: true, Order: 3},
	}
}

// PaymentConfig returns the default fee configuration: every track required.
func PaymentConfig() types.PaymentConfig {
	return types.PaymentConfig{
		KPlus:                 true,
		QRCode:                true,
		RequireApplicationFee: true,
		RequireInterviewFee:   true,
		RequireTuitionFee:     true,
		ApplicationFee:        500,
		InterviewFee:          200,
		TuitionFee:            15000,
		Currency:              DefaultCurrency,
	}
}

// ExamSuites returns the default suites.
func ExamSuites() []types.ExamSuite {
	return []types.ExamSuite{
		{ID: "suite_apt", Title: "ความถนัด (Aptitude Test)", Description: "Logic, Math, and General Knowledge"},
		{ID: "suite_att", Title: "ทัศนคติ (Attitude Test)", Description: "Personality and situational judgment"},
	}
}

// ExamQuestions returns the default question corpus.
func ExamQuestions() []types.ExamQuestion {
	return []types.ExamQuestion{
		{
			ID: "q1", SuiteID: "suite_apt", Text: "What is the capital of France?",
			Type: types.QuestionSingle, Score: 5, IsGraded: true,
			Options: []types.QuestionOption{
				{ID: "o1", Text: "London"},
				{ID: "o2", Text: "Berlin"},
				{ID: "o3", Text: "Paris", IsCorrect: true},
				{ID: "o4", Text: "Madrid"},
			},
		},
		{
			ID: "q2", SuiteID: "suite_apt", Text: "Select all prime numbers below 10.",
			Type: types.QuestionMulti, Score: 5, IsGraded: true,
			Options: []types.QuestionOption{
				{ID: "o1", Text: "2", IsCorrect: true},
				{ID: "o2", Text: "3", IsCorrect: true},
				{ID: "o3", Text: "4"},
				{ID: "o4", Text: "5", IsCorrect: true},
				{ID: "o5", Text: "9"},
			},
		},
		{
			ID: "q3", SuiteID: "suite_att", Text: "Why do you want to join our university?",
			Type: types.QuestionEssay, Score: 10, IsGraded: true,
		},
		{
			ID: "q4", SuiteID: "suite_att", Text: "You see a classmate cheating. What do you do?",
			Type: types.QuestionSingle, Score: 5, IsGraded: true,
			Options: []types.QuestionOption{
				{ID: "a1", Text: "Ignore it"},
				{ID: "a2", Text: "Report to teacher", IsCorrect: true},
				{ID: "a3", Text: "Join them"},
			},
		},
	}
}

// InterviewSlots returns the default slots. Booked counts start at zero so a
// seeded pool holds no bookings without applicants behind them.
func InterviewSlots() []types.InterviewSlot {
	day := func(h int) time.Time { return time.Date(2023, 12, 1, h, 0, 0, 0, time.UTC) }
	return []types.InterviewSlot{
		{
			ID: "slot_1", Start: day(9), End: day(12),
			Location: "Building A, Room 101", Type: types.InterviewOnsite,
			Capacity: 10, Groups: []types.InterviewGroup{},
		},
		{
			ID: "slot_2", Start: day(13), End: day(16),
			Location: "Zoom Meeting Link", Type: types.InterviewOnline,
			Capacity: 20, Groups: []types.InterviewGroup{},
		},
	}
}

// StaffUsers returns the default staff directory.
func StaffUsers() []types.StaffUser {
	return []types.StaffUser{
		{ID: "admin_1", Username: "superadmin", Name: "Super Admin", Role: types.RoleSuperAdmin},
		{ID: "reviewer_1", Username: "reviewer1", Name: "Dr. Reviewer One", Role: types.RoleReviewer},
		{ID: "proctor_1", Username: "proctor1", Name: "Exam Proctor A", Role: types.RoleProctor},
	}
}

// EducationMajors returns the default majors.
func EducationMajors() []types.EducationMajor {
	names := []string{
		"Computer Engineering", "Computer Science", "Business Administration", "Medicine", "Law",
		"Communication Arts", "Architecture", "Economics", "Psychology", "Other",
	}
	out := make([]types.EducationMajor, len(names))
	for i, n := range names {
		out[i] = types.EducationMajor{ID: "major_" + strconv.Itoa(i+1), Name: n}
	}
	return out
}
