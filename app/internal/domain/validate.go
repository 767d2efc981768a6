package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ApplicationForm is what a candidate submits through the bot.
type ApplicationForm struct {
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Position        string   `json:"position"`
	ExperienceYears *int     `json:"experience_years"`
	Skills          []string `json:"skills"`
	EnglishLevel    string   `json:"english_level"`
	Education       string   `json:"education"`
	PreviousWork    string   `json:"previous_work"`
	PortfolioURL    string   `json:"portfolio_url"`
	AdditionalInfo  string   `json:"additional_info"`
}

// CleanText trims and NFC-normalizes free text so equal strings compare equal.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Normalize returns a copy with every text field cleaned and empty skills dropped.
func (f ApplicationForm) Normalize() ApplicationForm {
	out := f
	out.FullName = CleanText(f.FullName)
	out.Email = strings.ToLower(CleanText(f.Email))
	out.Phone = CleanText(f.Phone)
	out.Position = CleanText(f.Position)
	out.EnglishLevel = CleanText(f.EnglishLevel)
	out.Education = CleanText(f.Education)
	out.PreviousWork = CleanText(f.PreviousWork)
	out.PortfolioURL = CleanText(f.PortfolioURL)
	out.AdditionalInfo = CleanText(f.AdditionalInfo)
	out.Skills = nil
	for _, s := range f.Skills {
		if s = CleanText(s); s != "" {
			out.Skills = append(out.Skills, s)
		}
	}
	return out
}

// Validate checks a normalized form.
func (f ApplicationForm) Validate() error {
	fields := map[string]string{}
	lengthBetween(fields, "full_name", f.FullName, 2, 255)
	if !emailRe.MatchString(f.Email) {
		fields["email"] = "must be a valid email address"
	}
	lengthBetween(fields, "phone", f.Phone, 0, 50)
	lengthBetween(fields, "position", f.Position, 2, 255)
	if f.ExperienceYears != nil && (*f.ExperienceYears < 0 || *f.ExperienceYears > 50) {
		fields["experience_years"] = "must be between 0 and 50"
	}
	if len(f.Skills) > 50 {
		fields["skills"] = "at most 50 skills"
	}
	lengthBetween(fields, "english_level", f.EnglishLevel, 0, 50)
	lengthBetween(fields, "education", f.Education, 0, 1000)
	lengthBetween(fields, "previous_work", f.PreviousWork, 0, 2000)
	lengthBetween(fields, "portfolio_url", f.PortfolioURL, 0, 500)
	lengthBetween(fields, "additional_info", f.AdditionalInfo, 0, 2000)
	if len(fields) > 0 {
		return ValidationError("invalid application form", fields)
	}
	return nil
}

func lengthBetween(fields map[string]string, name, v string, min, max int) {
	n := utf8.RuneCountInString(v)
	switch {
	case n == 0 && min > 0:
		fields[name] = "required"
	case n < min:
		fields[name] = fmt.Sprintf("at least %d characters", min)
	case n > max:
		fields[name] = fmt.Sprintf("at most %d characters", max)
	}
}

// SlotWindow is one proposed time window.
type SlotWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ValidateSlots requires at least one window, each with start before end.
func ValidateSlots(slots []SlotWindow) error {
	if len(slots) == 0 {
		return ValidationError("at least one slot is required", map[string]string{"slots": "required"})
	}
	for i, s := range slots {
		if s.Start.IsZero() || s.End.IsZero() {
			return ValidationError(fmt.Sprintf("slot %d has no start or end", i), map[string]string{"slots": "start and end are required"})
		}
		if !s.Start.Before(s.End) {
			return ValidationError(fmt.Sprintf("slot %d starts at or after its end", i), map[string]string{"slots": "start must be before end"})
		}
	}
	return nil
}

// MeetingDetails are the location specifics attached on propose or finalize.
type MeetingDetails struct {
	MeetLink string `json:"meet_link"`
	Address  string `json:"address"`
}

// ValidateLocation requires the detail matching the location type.
func ValidateLocation(loc LocationType, d MeetingDetails) error {
	switch loc {
	case LocationOnline:
		if CleanText(d.MeetLink) == "" {
			return ValidationError("online interview needs a meeting link", map[string]string{"meet_link": "required"})
		}
	case LocationOffice:
		if CleanText(d.Address) == "" {
			return ValidationError("office interview needs an address", map[string]string{"address": "required"})
		}
	default:
		return ValidationError("unknown location type", map[string]string{"location_type": "must be online or office"})
	}
	return nil
}
