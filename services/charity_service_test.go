package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosnap_server/models"
)

func TestCharityLifecycle(t *testing.T) {
	table := newTable(t)
	charities := newCharities(table)
	ctx := context.Background()

	charity, err := charities.CreateCharity(ctx, "Tree Fund")
	require.NoError(t, err)
	assert.Equal(t, "charity-1", charity.CharityID)

	require.NoError(t, charities.SignupForCharity(ctx, charity.CharityID, "alice"))
	require.NoError(t, charities.SignupForCharity(ctx, charity.CharityID, "bob"))
	assert.ErrorIs(t, charities.SignupForCharity(ctx, charity.CharityID, "alice"), ErrAlreadyMember)
	assert.EqualValues(t, 2, counter(t, table, models.CharityKey(charity.CharityID), models.AttrTotalSignups))

	ids, err := charities.GetUserCharities(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{charity.CharityID}, ids)
}

func TestSignupForUnknownCharity(t *testing.T) {
	err := newCharities(newTable(t)).SignupForCharity(context.Background(), "missing", "alice")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestListCharities(t *testing.T) {
	charities := newCharities(newTable(t))
	ctx := context.Background()

	for _, name := range []string{"Wildlife Trust", "Tree Fund"} {
		_, err := charities.CreateCharity(ctx, name)
		require.NoError(t, err)
	}

	list, err := charities.ListCharities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Tree Fund", list[0].Name)
	assert.Equal(t, "Wildlife Trust", list[1].Name)
}

func TestCharityNameRequired(t *testing.T) {
	_, err := newCharities(newTable(t)).CreateCharity(context.Background(), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Charity name is required.", verr.Message)
}
