package service

import (
	"autorenta/internal/entities"
	"autorenta/internal/repository"
)

type DashboardService struct {
	repo *repository.DashboardRepository
}

func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

func (s *DashboardService) Summary() (*entities.DashboardSummary, error) {
	return s.repo.Summary()
}
