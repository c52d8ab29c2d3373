package lifecycle

import (
	"fmt"

	"github.com/jonathan/uniadmit/internal/documents"
	"github.com/jonathan/uniadmit/internal/types"
)

// EditKind names the part of the record an applicant action changes.
type EditKind string

const (
	EditProfile   EditKind = "profile"
	EditEducation EditKind = "education"
	EditDocument  EditKind = "document"
	EditExam      EditKind = "exam"
	EditSignature EditKind = "signature"
)

// Edit describes an applicant-initiated mutation.
type Edit struct {
	Kind       EditKind
	FieldIDs   []string
	DocumentID string
}

// CheckEdit enforces edit permissions by status. DRAFT is fully editable.
// DOCS_REJECTED is the restricted mode: only returned documents (and items
// added since the return) may change, profile changes are limited to the fields staff flagged; exam answers and
// the signature are frozen. Every other status is read-only to the applicant.
func CheckEdit(a types.Applicant, edit Edit) error {
	transition := "edit " + string(edit.Kind)
	switch a.Status {
	case types.StatusDraft:
		return nil
	case types.StatusDocsRejected:
	default:
		return types.NewGuardViolation(transition, fmt.Sprintf("application is %s", a.Status))
	}

	switch edit.Kind {
	case EditDocument:
		doc, ok := a.Documents[edit.DocumentID]
		if !ok {
			return types.NewNotFound("document", edit.DocumentID)
		}
		if !documents.EditableWhileReturned(doc) {
			return types.NewGuardViolation(transition, fmt.Sprintf("document %s was not returned", edit.DocumentID))
		}
		return nil
	case EditProfile:
		for _, id := range edit.FieldIDs {
			if _, flagged := a.FieldRejections[id]; !flagged {
				return types.NewGuardViolation(transition, fmt.Sprintf("field %s is not open for correction", id))
			}
		}
		return nil
	case EditEducation:
		if _, flagged := a.FieldRejections[types.FieldIDEducations]; !flagged {
			return types.NewGuardViolation(transition, "education is not open for correction")
		}
		return nil
	}
	return types.NewGuardViolation(transition, "locked while documents are returned")
}
