package services

import (
	"context"

	"ecosnap_server/logger"
	"ecosnap_server/models"
	"ecosnap_server/store"
)

type CharityService struct {
	groups *groupStore
}

func NewCharityService(table store.Table, log *logger.Logger) *CharityService {
	return &CharityService{groups: newGroupStore(table, models.GroupCharity, log.With("service", "charities"))}
}

func (s *CharityService) CreateCharity(ctx context.Context, name string) (models.Charity, error) {
	if err := s.groups.validateName(name); err != nil {
		return models.Charity{}, err
	}
	charity := models.NewCharity(s.groups.newID(), name, models.FormatTimestamp(s.groups.now()))
	if err := s.groups.create(ctx, charity); err != nil {
		return models.Charity{}, err
	}
	s.groups.log.Info("✅ Charity created", "charityId", charity.CharityID, "name", name)
	return charity, nil
}

func (s *CharityService) ListCharities(ctx context.Context) ([]models.Charity, error) {
	items, err := s.groups.list(ctx)
	if err != nil {
		return nil, err
	}
	charities := make([]models.Charity, 0, len(items))
	for _, item := range items {
		var c models.Charity
		if err := models.FromItem(item, &c); err != nil {
			return nil, err
		}
		charities = append(charities, c)
	}
	return charities, nil
}

func (s *CharityService) SignupForCharity(ctx context.Context, charityID, userID string) error {
	joinedAt := models.FormatTimestamp(s.groups.now())
	return s.groups.signup(ctx, charityID, userID, models.NewCharityMembership(userID, charityID, joinedAt))
}

func (s *CharityService) GetUserCharities(ctx context.Context, userID string) ([]string, error) {
	return s.groups.userGroups(ctx, userID)
}
