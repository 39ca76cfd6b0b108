package services

import (
	"context"
	"strings"

	"ecosnap_server/logger"
	"ecosnap_server/models"
	"ecosnap_server/store"
)

// OrganizationService manages organizations, their memberships and the
// per-member custom counter.
type OrganizationService struct {
	groups *groupStore
}

func NewOrganizationService(table store.Table, log *logger.Logger) *OrganizationService {
	return &OrganizationService{groups: newGroupStore(table, models.GroupOrganization, log.With("service", "organizations"))}
}

// CreateOrganization stores a new organization with zeroed counters.
func (s *OrganizationService) CreateOrganization(ctx context.Context, name string) (models.Organization, error) {
	if err := s.groups.validateName(name); err != nil {
		return models.Organization{}, err
	}
	org := models.NewOrganization(s.groups.newID(), name, models.FormatTimestamp(s.groups.now()))
	if err := s.groups.create(ctx, org); err != nil {
		return models.Organization{}, err
	}
	s.groups.log.Info("✅ Organization created", "orgId", org.OrgID, "name", name)
	return org, nil
}

func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	items, err := s.groups.list(ctx)
	if err != nil {
		return nil, err
	}
	orgs := make([]models.Organization, 0, len(items))
	for _, item := range items {
		var org models.Organization
		if err := models.FromItem(item, &org); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

// SignupForOrganization fails with ErrAlreadyMember on a repeat signup and
// ErrGroupNotFound for an unknown organization.
func (s *OrganizationService) SignupForOrganization(ctx context.Context, orgID, userID string) error {
	joinedAt := models.FormatTimestamp(s.groups.now())
	return s.groups.signup(ctx, orgID, userID, models.NewOrgMembership(userID, orgID, joinedAt))
}

// IncrementCustomCounter adds one to the member's customCounter and to the
// organization's totalCustomCountSum atomically. A non-member gets
// ErrNotAMember and neither counter moves.
func (s *OrganizationService) IncrementCustomCounter(ctx context.Context, orgID, userID string) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	if strings.TrimSpace(orgID) == "" {
		return invalid("orgId", "Organization ID is required.")
	}

	err := s.groups.store.TransactWrite(ctx, []store.Op{
		{Update: &store.Update{
			Key:        models.MembershipKey(userID, models.GroupPrefixOrg, orgID),
			Increments: map[string]int64{models.AttrCustomCounter: 1},
			Condition:  store.ConditionExists,
		}},
		{Update: &store.Update{
			Key:        models.OrgKey(orgID),
			Increments: map[string]int64{models.AttrTotalCustomCountSum: 1},
			Condition:  store.ConditionExists,
		}},
	})
	if err := mapCancellation(err, ErrNotAMember, ErrGroupNotFound); err != nil {
		s.groups.log.Warn("Increment failed", "orgId", orgID, "userId", userID, "error", err)
		return err
	}
	return nil
}

func (s *OrganizationService) GetUserOrganizations(ctx context.Context, userID string) ([]string, error) {
	return s.groups.userGroups(ctx, userID)
}
