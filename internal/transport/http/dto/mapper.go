package dto

import (
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

func ToPublicationResp(l domain.PublicationLog) PublicationResp {
	warnings := l.Metadata.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return PublicationResp{
		ID:               l.ID,
		EventID:          l.EventID,
		Platform:         string(l.Platform),
		Status:           string(l.Status),
		PlatformEventID:  l.PlatformEventID,
		PlatformEventURL: l.PlatformEventURL,
		ErrorMessage:     l.ErrorMessage,
		Operation:        l.Metadata.Operation,
		Warnings:         warnings,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
		Live:             l.Status == domain.PublicationSuccess,
	}
}

func ToPublicationList(logs []domain.PublicationLog) ListResp[PublicationResp] {
	out := make([]PublicationResp, 0, len(logs))
	for _, l := range logs {
		out = append(out, ToPublicationResp(l))
	}
	return ListResp[PublicationResp]{Items: out, Total: len(out)}
}
