// Package profile validates applicant profile data against the field catalog
// and maintains the education history.
package profile

import (
	"sort"

	"github.com/jonathan/uniadmit/internal/types"
)

// Level is a degree level with its ordering rank.
type Level struct {
	ID    string
	Label string
	Rank  float64
}

// Levels lists the known degree levels from highest to lowest.
var Levels = []Level{
	{ID: "doctoral", Label: "Doctoral Degree", Rank: 4},
	{ID: "master", Label: "Master's Degree", Rank: 3},
	{ID: "bachelor", Label: "Bachelor's Degree", Rank: 2},
	{ID: "diploma", Label: "Diploma / Associate Degree", Rank: 1.5},
	{ID: "high_school", Label: "High School", Rank: 1},
}

// LevelByID looks up a level.
func LevelByID(id string) (Level, bool) {
	for _, l := range Levels {
		if l.ID == id {
			return l, true
		}
	}
	return Level{}, false
}

// LevelLabel returns the display label of a level id, or the id itself when unknown.
func LevelLabel(id string) string {
	if l, ok := LevelByID(id); ok {
		return l.Label
	}
	return id
}

func levelRank(id string) float64 {
	if l, ok := LevelByID(id); ok {
		return l.Rank
	}
	return 0
}

func levelByRank(rank float64) (Level, bool) {
	for _, l := range Levels {
		if l.Rank == rank {
			return l, true
		}
	}
	return Level{}, false
}

func hasLevel(records []types.EducationRecord, id string) bool {
	for _, r := range records {
		if r.Level == id {
			return true
		}
	}
	return false
}

// AddEducation adds a record for in.Level. Missing whole-number levels below it,
// down to bachelor, are added as empty records so a master's applicant also
// declares a bachelor's degree. The result is sorted by level. The returned id
// is the record for in.Level, whether it was created now or already existed.
func AddEducation(records []types.EducationRecord, in types.EducationInput, newID func() string) ([]types.EducationRecord, string, error) {
	selected, ok := LevelByID(in.Level)
	if !ok {
		return nil, "", &types.ValidationError{Field: "level", Message: "unknown education level " + in.Level}
	}

	out := append([]types.EducationRecord{}, records...)
	var selectedID string
	for _, r := range out {
		if r.Level == selected.ID {
			selectedID = r.ID
			break
		}
	}
	if selectedID == "" {
		rec := fromInput(newID(), in)
		out = append(out, rec)
		selectedID = rec.ID
	}

	for rank := selected.Rank - 1; rank >= 2; rank-- {
		lower, ok := levelByRank(rank)
		if !ok || hasLevel(out, lower.ID) {
			continue
		}
		out = append(out, types.EducationRecord{ID: newID(), Level: lower.ID})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return levelRank(out[i].Level) < levelRank(out[j].Level)
	})
	return out, selectedID, nil
}

// UpdateEducation replaces the editable fields of one record.
func UpdateEducation(records []types.EducationRecord, id string, in types.EducationInput) ([]types.EducationRecord, error) {
	if _, ok := LevelByID(in.Level); !ok {
		return nil, &types.ValidationError{Field: "level", Message: "unknown education level " + in.Level}
	}
	out := append([]types.EducationRecord{}, records...)
	for i := range out {
		if out[i].ID == id {
			out[i] = fromInput(id, in)
			return out, nil
		}
	}
	return nil, types.NewNotFound("education", id)
}

// RemoveEducation drops one record.
func RemoveEducation(records []types.EducationRecord, id string) ([]types.EducationRecord, error) {
	out := make([]types.EducationRecord, 0, len(records))
	found := false
	for _, r := range records {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		return nil, types.NewNotFound("education", id)
	}
	return out, nil
}

// HighestLevel returns the label of the highest declared level, or "" with no records.
func HighestLevel(records []types.EducationRecord) string {
	best, bestRank := "", 0.0
	for _, r := range records {
		if rank := levelRank(r.Level); rank > bestRank {
			best, bestRank = LevelLabel(r.Level), rank
		}
	}
	return best
}

func fromInput(id string, in types.EducationInput) types.EducationRecord {
	return types.EducationRecord{
		ID:           id,
		Level:        in.Level,
		DegreeName:   in.DegreeName,
		Institution:  in.Institution,
		GPAX:         in.GPAX,
		FieldOfStudy: in.FieldOfStudy,
		StartYear:    in.StartYear,
		EndYear:      in.EndYear,
	}
}
