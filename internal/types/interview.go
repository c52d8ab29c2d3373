package types

import "time"

// InterviewType is where an interview takes place.
type InterviewType string

const (
	InterviewOnsite InterviewType = "Onsite"
	InterviewOnline InterviewType = "Online"
)

// InterviewGroup orders a subset of a slot's applicants for calling.
type InterviewGroup struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ApplicantIDs []string `json:"applicant_ids"`
}

// InterviewSlot is a scheduled window with fixed capacity.
type InterviewSlot struct {
	ID       string           `json:"id"`
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	Location string           `json:"location"`
	Type     InterviewType    `json:"type"`
	Capacity int              `json:"capacity"`
	Booked   int              `json:"booked"`
	Groups   []InterviewGroup `json:"groups"`
}

// Available reports whether another booking fits.
func (s InterviewSlot) Available() bool {
	return s.Booked < s.Capacity
}

// Clone deep-copies the slot including its groups.
func (s InterviewSlot) Clone() InterviewSlot {
	out := s
	out.Groups = make([]InterviewGroup, len(s.Groups))
	for i, g := range s.Groups {
		g.ApplicantIDs = append([]string{}, g.ApplicantIDs...)
		out.Groups[i] = g
	}
	return out
}

// GroupOf returns the index of the group holding the applicant, or -1.
func (s InterviewSlot) GroupOf(applicantID string) int {
	for i, g := range s.Groups {
		for _, id := range g.ApplicantIDs {
			if id == applicantID {
				return i
			}
		}
	}
	return -1
}
