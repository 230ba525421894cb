package service

import (
	"context"

	"github.com/amarfts/ph-scheduler/internal/posts/transport"
)

// GetMessage returns the shared publication message.
func (s *Service) GetMessage(ctx context.Context) (transport.MessageResponse, error) {
	message, err := s.repo.GetMessage(ctx)
	if err != nil {
		return transport.MessageResponse{}, err
	}
	return transport.MessageResponse{Message: message}, nil
}

// UpdateMessage creates or updates the shared publication message.
func (s *Service) UpdateMessage(ctx context.Context, req transport.MessageRequest) (transport.UpsertMessageResponse, error) {
	inserted, err := s.repo.UpsertMessage(ctx, req.Message)
	if err != nil {
		return transport.UpsertMessageResponse{}, err
	}

	action := "updated"
	if inserted {
		action = "inserted"
	}

	s.log.Info("publication message saved", "action", action)
	return transport.UpsertMessageResponse{Action: action}, nil
}
