package handler

import (
	"context"

	"github.com/campuscore/approval-service/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=service_mocks

type ApprovalService interface {
	Submit(ctx context.Context, sub model.SubmitRequest) (model.Request, error)
	Review(ctx context.Context, requestID string, rev model.ReviewRequest) (model.Request, error)
	Withdraw(ctx context.Context, requestID, requesterID string) (model.Request, error)
	Return(ctx context.Context, requestID string) (model.Request, error)
	GetStatus(ctx context.Context, requestID string) (model.RequestView, error)
	ListPending(ctx context.Context, role model.Role, page, size int) (model.ListRequests, error)
	RegisterResource(ctx context.Context, req model.RegisterResourceRequest) (model.Resource, error)
	Restock(ctx context.Context, resourceID string, qty int) (model.Resource, error)
	Availability(ctx context.Context, resourceID string) (model.Resource, error)
}
