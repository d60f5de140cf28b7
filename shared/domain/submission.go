package domain

import "time"

type SubmissionId = string

// Submission is a single contact-form entry.
// Timestamp is nil for records that never reached the remote store.
type Submission struct {
	Id          SubmissionId
	Name        string
	Message     string
	CreatedAt   time.Time
	Timestamp   *time.Time
	DisplayDate string
}

// SubmissionData is the validated input of a write.
type SubmissionData struct {
	Name      string
	Message   string
	CreatedAt time.Time
}

// Outcome tells the caller which tier accepted a write.
type Outcome int

const (
	TotalFailure Outcome = iota
	RemoteSuccess
	FallbackSuccess
)

func (o Outcome) String() string {
	switch o {
	case RemoteSuccess:
		return "remote"
	case FallbackSuccess:
		return "fallback"
	default:
		return "failure"
	}
}

type SubmitResult struct {
	Outcome Outcome
	Id      SubmissionId
}

// DisplayLayout renders dates for humans, e.g. "3/14/2025, 9:26:53 AM".
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// FormatDisplayDate renders t in loc using DisplayLayout.
func FormatDisplayDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}

// WithDisplayDate fills DisplayDate from the authoritative timestamp.
func (s Submission) WithDisplayDate(loc *time.Location) Submission {
	if s.Timestamp != nil {
		s.DisplayDate = FormatDisplayDate(*s.Timestamp, loc)
	} else if !s.CreatedAt.IsZero() {
		s.DisplayDate = FormatDisplayDate(s.CreatedAt, loc)
	}
	return s
}
