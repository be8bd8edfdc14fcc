package presenter

import (
	dto "github.com/livenotes-ai/livenotes/internal/adapter/dto/session"
	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/usecase/qa"
	"github.com/livenotes-ai/livenotes/internal/usecase/session"
)

// ToJoinResponse converts a freshly created Session entity to a JoinResponse DTO
func ToJoinResponse(s *entities.Session) *dto.JoinResponse {
	if s == nil {
		return nil
	}
	return &dto.JoinResponse{
		SessionID: s.ID,
		Status:    string(s.Status),
		Platform:  string(s.Platform),
		BotName:   s.BotName,
		OwnerID:   s.OwnerID,
		JoinedAt:  s.CreatedAt,
	}
}

// ToBriefResponse converts a brief result to a BriefResponse DTO
func ToBriefResponse(b *qa.BriefOutput) *dto.BriefResponse {
	if b == nil {
		return nil
	}
	return &dto.BriefResponse{
		SessionID:       b.SessionID,
		Brief:           b.Summary,
		KeyPoints:       b.KeyPoints,
		Speakers:        b.Speakers,
		DurationMinutes: b.DurationMinutes,
		LastUpdated:     b.GeneratedAt,
	}
}

// ToAskResponse converts an ask result to an AskResponse DTO
func ToAskResponse(a *qa.AskOutput) *dto.AskResponse {
	if a == nil {
		return nil
	}
	return &dto.AskResponse{
		Status:       "speaking",
		QuestionID:   a.QuestionID,
		QuestionText: a.QuestionText,
		ResponseText: a.ResponseText,
		WillSpeakAt:  a.WillSpeakAt,
	}
}

// ToStatusResponse converts a status result to a StatusResponse DTO
func ToStatusResponse(out *session.StatusOutput) *dto.StatusResponse {
	if out == nil || out.Session == nil {
		return nil
	}
	resp := &dto.StatusResponse{
		SessionID:       out.Session.ID,
		Status:          string(out.Session.Status),
		Platform:        string(out.Session.Platform),
		DurationMinutes: out.Session.DurationMinutes(),
		HasTranscript:   out.Session.HasTranscript(),
	}
	if out.BotStatus != nil {
		code := out.BotStatus.Code
		resp.BotStatus = &code
	}
	return resp
}

// ToLeaveResponse builds the acknowledgement for a leave request
func ToLeaveResponse(sessionID string) *dto.LeaveResponse {
	return &dto.LeaveResponse{
		SessionID: sessionID,
		Status:    "left",
		Message:   "Bot left the meeting",
	}
}
