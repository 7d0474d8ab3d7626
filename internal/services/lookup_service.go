package services

import (
	"context"

	"github.com/baharkarakas/maverick-bank/internal/models"
	repo "github.com/baharkarakas/maverick-bank/internal/repository"
)

type LookupService struct{ r repo.Lookups }

func NewLookupService(r repo.Lookups) *LookupService { return &LookupService{r: r} }

func (s *LookupService) TransactionTypes(ctx context.Context) ([]models.TransactionType, error) {
	return s.r.TransactionTypes(ctx)
}

func (s *LookupService) AccountTypes(ctx context.Context) ([]models.AccountType, error) {
	return s.r.AccountTypes(ctx)
}
