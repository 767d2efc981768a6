package handlers

import (
	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/service"
)

type proposeRequest struct {
	Slots        []domain.SlotWindow `json:"slots"`
	LocationType string              `json:"location_type"`
	MeetLink     string              `json:"meet_link"`
	Address      string              `json:"address"`
	Notes        string              `json:"notes"`
}

func (p proposeRequest) input(t domain.InterviewType) (service.ProposeInput, error) {
	in := service.ProposeInput{
		Type:    t,
		Slots:   p.Slots,
		Details: domain.MeetingDetails{MeetLink: p.MeetLink, Address: p.Address},
		Notes:   p.Notes,
	}
	if p.LocationType != "" {
		loc, err := domain.ParseLocationType(p.LocationType)
		if err != nil {
			return service.ProposeInput{}, err
		}
		in.Location = &loc
	}
	return in, nil
}

type finalizeRequest struct {
	InterviewID  int64  `json:"interview_id"`
	LocationType string `json:"location_type"`
	MeetLink     string `json:"meet_link"`
	Address      string `json:"address"`
}

func (f finalizeRequest) input(t domain.InterviewType) service.FinalizeInput {
	return service.FinalizeInput{
		InterviewID: f.InterviewID,
		Type:        t,
		Location:    domain.LocationType(f.LocationType),
		Details:     domain.MeetingDetails{MeetLink: f.MeetLink, Address: f.Address},
	}
}
