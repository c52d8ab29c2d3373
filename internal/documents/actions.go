package documents

import (
	"sort"

	"github.com/jonathan/uniadmit/internal/types"
)

// AdminPrefix prefixes the id of a staff-attached document.
const AdminPrefix = "doc_admin_"

func lookup(a types.Applicant, docID string) (types.DocumentItem, error) {
	doc, ok := a.Documents[docID]
	if !ok {
		return types.DocumentItem{}, types.NewNotFound("document", docID)
	}
	return doc, nil
}

// Upload attaches a file to a document and marks it uploaded. Any previous
// review note is cleared.
func Upload(a types.Applicant, docID string, req types.UploadRequest) (types.Applicant, error) {
	doc, err := lookup(a, docID)
	if err != nil {
		return a, err
	}
	out := a.Clone()
	doc.Status = types.DocUploaded
	doc.FileRef = req.FileRef
	doc.FileName = req.FileName
	doc.ReviewNote = ""
	out.Documents[docID] = doc
	return out, nil
}

// Remove detaches the file of a document. A returned document in
// DOCS_REJECTED goes back to rejected and keeps the note so the applicant
// still sees why it was returned; any other item goes back to pending.
func Remove(a types.Applicant, docID string) (types.Applicant, error) {
	doc, err := lookup(a, docID)
	if err != nil {
		return a, err
	}
	out := a.Clone()
	doc.FileRef = ""
	doc.FileName = ""
	if a.Status == types.StatusDocsRejected && (doc.Returned || doc.Status == types.DocRejected) {
		doc.Status = types.DocRejected
		doc.Returned = true
	} else {
		doc.Status = types.DocPending
		doc.ReviewNote = ""
	}
	out.Documents[docID] = doc
	return out, nil
}

// Review records a staff verdict on one document.
func Review(a types.Applicant, docID string, approve bool, note string) (types.Applicant, error) {
	doc, err := lookup(a, docID)
	if err != nil {
		return a, err
	}
	out := a.Clone()
	if approve {
		doc.Status = types.DocApproved
	} else {
		doc.Status = types.DocRejected
	}
	doc.Returned = !approve
	doc.ReviewNote = note
	out.Documents[docID] = doc
	return out, nil
}

// EditableWhileReturned reports whether the applicant may upload or remove
// doc while the application is DOCS_REJECTED: documents staff returned, and
// items added since the return that still wait for a first upload.
func EditableWhileReturned(doc types.DocumentItem) bool {
	return doc.Returned || doc.Status == types.DocRejected || doc.Status == types.DocPending
}

// CloseReturns clears the returned mark of every document.
func CloseReturns(a types.Applicant) types.Applicant {
	out := a.Clone()
	for id, doc := range out.Documents {
		if doc.Returned {
			doc.Returned = false
			out.Documents[id] = doc
		}
	}
	return out
}

// Attach adds a staff-supplied document that is approved on arrival and
// linked to no catalog entry.
func Attach(a types.Applicant, suffix string, staffID string, req types.AttachDocumentRequest) types.Applicant {
	out := a.Clone()
	id := AdminPrefix + suffix
	out.Documents[id] = types.DocumentItem{
		ID:         id,
		Name:       req.Name,
		Status:     types.DocApproved,
		FileRef:    req.FileRef,
		FileName:   req.FileName,
		UploadedBy: staffID,
	}
	return out
}

// Complete reports whether every document is uploaded or approved.
func Complete(a types.Applicant) bool {
	return len(Outstanding(a)) == 0
}

// Outstanding returns the ids of documents that are neither uploaded nor approved, sorted.
func Outstanding(a types.Applicant) []string {
	var ids []string
	for id, doc := range a.Documents {
		if !doc.Status.Submittable() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Summary counts documents per status.
type Summary struct {
	Pending  int `json:"pending"`
	Uploaded int `json:"uploaded"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Summarize counts the applicant's documents by status.
func Summarize(a types.Applicant) Summary {
	var s Summary
	for _, doc := range a.Documents {
		switch doc.Status {
		case types.DocPending:
			s.Pending++
		case types.DocUploaded:
			s.Uploaded++
		case types.DocApproved:
			s.Approved++
		case types.DocRejected:
			s.Rejected++
		}
	}
	return s
}
