package vehicle

import (
	"context"
	"errors"
)

var ErrNotYourVehicle = errors.New("vehicle belongs to another owner")

type Service interface {
	Create(ctx context.Context, ownerID int, req CreateVehicleRequest) (*Vehicle, error)
	GetByID(ctx context.Context, id int) (*Vehicle, error)
	ListApproved(ctx context.Context) ([]Vehicle, error)
	ListByOwner(ctx context.Context, ownerID int) ([]Vehicle, error)
	ListByStatus(ctx context.Context, status ApprovalStatus) ([]Vehicle, error)
	Approve(ctx context.Context, id int) error
	Reject(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, ownerID int, req CreateVehicleRequest) (*Vehicle, error) {
	return s.repo.Create(ctx, ownerID, req)
}

func (s *service) GetByID(ctx context.Context, id int) (*Vehicle, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

func (s *service) ListApproved(ctx context.Context) ([]Vehicle, error) {
	return s.repo.ListApproved(ctx)
}

func (s *service) ListByOwner(ctx context.Context, ownerID int) ([]Vehicle, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) ListByStatus(ctx context.Context, status ApprovalStatus) ([]Vehicle, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) Approve(ctx context.Context, id int) error {
	return s.repo.SetStatus(ctx, id, StatusApproved)
}

func (s *service) Reject(ctx context.Context, id int) error {
	return s.repo.SetStatus(ctx, id, StatusRejected)
}
