package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleHR          Role = "hr"
	RoleInterviewer Role = "interviewer"
	RoleAnalyst     Role = "analyst"
	RoleDirector    Role = "director"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCandidate, RoleHR, RoleInterviewer, RoleAnalyst, RoleDirector:
		return r, nil
	}
	return "", ValidationError(fmt.Sprintf("unknown role %q", s), map[string]string{"role": "unknown role"})
}

type InterviewType string

const (
	InterviewHRScreening InterviewType = "hr_screening"
	InterviewTechnical   InterviewType = "technical"
)

func ParseInterviewType(s string) (InterviewType, error) {
	switch t := InterviewType(s); t {
	case InterviewHRScreening, InterviewTechnical:
		return t, nil
	}
	return "", ValidationError(fmt.Sprintf("unknown interview type %q", s), map[string]string{"interview_type": "unknown type"})
}

// PendingStatus is the application status an interview of this type waits in.
func (t InterviewType) PendingStatus() Status {
	if t == InterviewTechnical {
		return StatusTechPending
	}
	return StatusScreeningPending
}

// ScheduledStatus is the status reached once the interview is confirmed.
func (t InterviewType) ScheduledStatus() Status {
	if t == InterviewTechnical {
		return StatusTechScheduled
	}
	return StatusScreeningScheduled
}

type LocationType string

const (
	LocationOnline LocationType = "online"
	LocationOffice LocationType = "office"
)

func ParseLocationType(s string) (LocationType, error) {
	switch l := LocationType(s); l {
	case LocationOnline, LocationOffice:
		return l, nil
	}
	return "", ValidationError(fmt.Sprintf("unknown location type %q", s), map[string]string{"location_type": "must be online or office"})
}

type User struct {
	ID         int64     `db:"id" json:"id"`
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	Username   string    `db:"username" json:"username,omitempty"`
	FirstName  string    `db:"first_name" json:"first_name,omitempty"`
	LastName   string    `db:"last_name" json:"last_name,omitempty"`
	Role       Role      `db:"role" json:"role"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName falls back from full name to username to the telegram id.
func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprint(u.TelegramID)
}

// Skills is stored as a JSON array in a text column.
type Skills []string

func (s Skills) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Skills) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("skills: unsupported source %T", src)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(s))
}

type Application struct {
	ID                int64      `db:"id" json:"id"`
	CandidateID       int64      `db:"candidate_id" json:"candidate_id"`
	HRID              *int64     `db:"hr_id" json:"hr_id"`
	TechInterviewerID *int64     `db:"tech_interviewer_id" json:"tech_interviewer_id"`
	FullName          string     `db:"full_name" json:"full_name"`
	Email             string     `db:"email" json:"email"`
	Phone             string     `db:"phone" json:"phone,omitempty"`
	Position          string     `db:"position" json:"position"`
	ExperienceYears   *int       `db:"experience_years" json:"experience_years,omitempty"`
	Skills            Skills     `db:"skills" json:"skills"`
	EnglishLevel      string     `db:"english_level" json:"english_level,omitempty"`
	Education         string     `db:"education" json:"education,omitempty"`
	PreviousWork      string     `db:"previous_work" json:"previous_work,omitempty"`
	PortfolioURL      string     `db:"portfolio_url" json:"portfolio_url,omitempty"`
	AdditionalInfo    string     `db:"additional_info" json:"additional_info,omitempty"`
	Status            Status     `db:"status" json:"status"`
	RejectionReason   *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt        *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

type Interview struct {
	ID            int64         `db:"id" json:"id"`
	ApplicationID int64         `db:"application_id" json:"application_id"`
	CandidateID   int64         `db:"candidate_id" json:"candidate_id"`
	InterviewerID int64         `db:"interviewer_id" json:"interviewer_id"`
	Type          InterviewType `db:"interview_type" json:"interview_type"`
	LocationType  *LocationType `db:"location_type" json:"location_type"`
	MeetLink      *string       `db:"meet_link" json:"meet_link"`
	Address       *string       `db:"address" json:"address"`
	SelectedTime  *time.Time    `db:"selected_time" json:"selected_time"`
	IsConfirmed   bool          `db:"is_confirmed" json:"is_confirmed"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`

	Slots []Slot `db:"-" json:"slots"`
}

type Slot struct {
	ID          int64     `db:"id" json:"id"`
	InterviewID int64     `db:"interview_id" json:"interview_id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	IsBooked    bool      `db:"is_booked" json:"is_booked"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Feedback struct {
	ID            int64     `db:"id" json:"id"`
	ApplicationID int64     `db:"application_id" json:"application_id"`
	InterviewerID int64     `db:"interviewer_id" json:"interviewer_id"`
	Score         int       `db:"score" json:"score"`
	Pros          string    `db:"pros" json:"pros,omitempty"`
	Cons          string    `db:"cons" json:"cons,omitempty"`
	Summary       string    `db:"summary" json:"summary,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ApplicationDetail is the staff-facing projection of one application.
type ApplicationDetail struct {
	Application
	Interviews []Interview `json:"interviews"`
	Feedbacks  []Feedback  `json:"feedbacks"`
}
