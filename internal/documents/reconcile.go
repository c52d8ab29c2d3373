// Package documents keeps an applicant's required documents in step with the
// document catalog and education history, and applies document actions.
package documents

import (
	"strconv"
	"strings"

	"github.com/jonathan/uniadmit/internal/profile"
	"github.com/jonathan/uniadmit/internal/types"
)

// CertificatePrefix prefixes the id of a generated education certificate.
const CertificatePrefix = "doc_cert_"

// CertificateID returns the document id generated for an education record.
func CertificateID(educationID string) string {
	return CertificatePrefix + educationID
}

// CatalogDocumentID returns the document id generated for a catalog entry.
func CatalogDocumentID(configID string) string {
	return "doc_" + configID
}

// CertificateName is the label of an education certificate document.
func CertificateName(conf types.DocumentConfig, edu types.EducationRecord) string {
	name := conf.Label + " - " + profile.LevelLabel(edu.Level)
	if edu.DegreeName != "" {
		name += " (" + edu.DegreeName + ")"
	}
	return name
}

// Syncable reports whether the document set may still change for status.
func Syncable(status types.ApplicationStatus) bool {
	return status == types.StatusDraft || status == types.StatusDocsRejected
}

// Reconcile returns a copy of a whose documents match the catalog and the
// education list. It never re-creates an existing item, so uploads and review
// state survive renames. Items of hidden or removed catalog entries are dropped
// only while they hold no file; certificates of removed education records are
// always dropped. An empty catalog only prunes those certificates. Outside
// DRAFT and DOCS_REJECTED a is returned unchanged. Reconcile is idempotent.
func Reconcile(a types.Applicant, catalog []types.DocumentConfig) types.Applicant {
	if !Syncable(a.Status) {
		return a
	}
	out := a.Clone()
	docs := out.Documents
	if len(catalog) == 0 {
		pruneCertificates(out)
		return out
	}

	byID := make(map[string]types.DocumentConfig, len(catalog))
	var eduConf *types.DocumentConfig
	for _, conf := range types.SortDocumentConfigs(catalog) {
		byID[conf.ID] = conf
		if conf.LinksEducation {
			c := conf
			eduConf = &c
			continue
		}
		if conf.IsHidden {
			continue
		}
		ensureCatalogItem(docs, conf)
	}

	pruneCertificates(out)
	for id, doc := range docs {
		if doc.IsDynamic {
			if (eduConf == nil || eduConf.IsHidden) && !doc.HasFile() {
				delete(docs, id)
			}
			continue
		}
		if doc.ConfigID == "" {
			continue
		}
		if conf, ok := byID[doc.ConfigID]; (!ok || conf.IsHidden) && !doc.HasFile() {
			delete(docs, id)
		}
	}

	if eduConf != nil && !eduConf.IsHidden {
		for _, edu := range out.Educations {
			id := CertificateID(edu.ID)
			name := CertificateName(*eduConf, edu)
			doc, ok := docs[id]
			if !ok {
				docs[id] = types.DocumentItem{
					ID:        id,
					Name:      name,
					Status:    types.DocPending,
					ConfigID:  eduConf.ID,
					IsDynamic: true,
				}
				continue
			}
			if doc.Name != name {
				doc.Name = name
				docs[id] = doc
			}
		}
	}
	return out
}

func ensureCatalogItem(docs map[string]types.DocumentItem, conf types.DocumentConfig) {
	for id, doc := range docs {
		if doc.ConfigID == conf.ID && !doc.IsDynamic {
			if doc.Name != conf.Label {
				doc.Name = conf.Label
				docs[id] = doc
			}
			return
		}
	}
	id := CatalogDocumentID(conf.ID)
	for n := 2; ; n++ {
		if _, taken := docs[id]; !taken {
			break
		}
		id = CatalogDocumentID(conf.ID) + "_" + strconv.Itoa(n)
	}
	docs[id] = types.DocumentItem{
		ID:       id,
		Name:     conf.Label,
		Status:   types.DocPending,
		ConfigID: conf.ID,
	}
}

// pruneCertificates drops the certificates of education records a no longer has.
func pruneCertificates(a types.Applicant) {
	for id, doc := range a.Documents {
		if !doc.IsDynamic {
			continue
		}
		if _, ok := a.Education(educationIDOf(id)); !ok {
			delete(a.Documents, id)
		}
	}
}

func educationIDOf(docID string) string {
	if !strings.HasPrefix(docID, CertificatePrefix) {
		return ""
	}
	return strings.TrimPrefix(docID, CertificatePrefix)
}
