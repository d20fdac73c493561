package vehicle

import "context"

type Repository interface {
	Create(ctx context.Context, ownerID int, req CreateVehicleRequest) (*Vehicle, error)
	GetByID(ctx context.Context, id int) (*Vehicle, error)
	ListApproved(ctx context.Context) ([]Vehicle, error)
	ListByOwner(ctx context.Context, ownerID int) ([]Vehicle, error)
	ListByStatus(ctx context.Context, status ApprovalStatus) ([]Vehicle, error)
	SetStatus(ctx context.Context, id int, status ApprovalStatus) error
}
