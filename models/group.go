package models

// Organization is an aggregate with a signup counter and the sum of every
// member's custom counter.
type Organization struct {
	PK                  string `dynamodbav:"PK" json:"-"`
	SK                  string `dynamodbav:"SK" json:"-"`
	GSI2PK              string `dynamodbav:"GSI2PK" json:"-"`
	GSI2SK              string `dynamodbav:"GSI2SK" json:"-"`
	OrgID               string `dynamodbav:"orgId" json:"orgId"`
	Name                string `dynamodbav:"name" json:"name"`
	TotalSignups        int64  `dynamodbav:"totalSignups" json:"totalSignups"`
	TotalCustomCountSum int64  `dynamodbav:"totalCustomCountSum" json:"totalCustomCountSum"`
	CreatedAt           string `dynamodbav:"createdAt" json:"createdAt"`
}

func NewOrganization(orgID, name, createdAt string) Organization {
	key := OrgKey(orgID)
	idx := CategoryIndexKey(GroupOrganization, name)
	return Organization{
		PK:        key.PK,
		SK:        key.SK,
		GSI2PK:    idx.PK,
		GSI2SK:    idx.SK,
		OrgID:     orgID,
		Name:      name,
		CreatedAt: createdAt,
	}
}

type Charity struct {
	PK           string `dynamodbav:"PK" json:"-"`
	SK           string `dynamodbav:"SK" json:"-"`
	GSI2PK       string `dynamodbav:"GSI2PK" json:"-"`
	GSI2SK       string `dynamodbav:"GSI2SK" json:"-"`
	CharityID    string `dynamodbav:"charityId" json:"charityId"`
	Name         string `dynamodbav:"name" json:"name"`
	TotalSignups int64  `dynamodbav:"totalSignups" json:"totalSignups"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

func NewCharity(charityID, name, createdAt string) Charity {
	key := CharityKey(charityID)
	idx := CategoryIndexKey(GroupCharity, name)
	return Charity{
		PK:        key.PK,
		SK:        key.SK,
		GSI2PK:    idx.PK,
		GSI2SK:    idx.SK,
		CharityID: charityID,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// OrgMembership proves a user signed up for an organization.
type OrgMembership struct {
	PK            string `dynamodbav:"PK" json:"-"`
	SK            string `dynamodbav:"SK" json:"-"`
	OrgID         string `dynamodbav:"orgId" json:"orgId"`
	UserID        string `dynamodbav:"userId" json:"userId"`
	JoinedAt      string `dynamodbav:"joinedAt" json:"joinedAt"`
	CustomCounter int64  `dynamodbav:"customCounter" json:"customCounter"`
}

func NewOrgMembership(userID, orgID, joinedAt string) OrgMembership {
	key := MembershipKey(userID, GroupPrefixOrg, orgID)
	return OrgMembership{PK: key.PK, SK: key.SK, OrgID: orgID, UserID: userID, JoinedAt: joinedAt}
}

type CharityMembership struct {
	PK        string `dynamodbav:"PK" json:"-"`
	SK        string `dynamodbav:"SK" json:"-"`
	CharityID string `dynamodbav:"charityId" json:"charityId"`
	UserID    string `dynamodbav:"userId" json:"userId"`
	JoinedAt  string `dynamodbav:"joinedAt" json:"joinedAt"`
}

func NewCharityMembership(userID, charityID, joinedAt string) CharityMembership {
	key := MembershipKey(userID, GroupPrefixCharity, charityID)
	return CharityMembership{PK: key.PK, SK: key.SK, CharityID: charityID, UserID: userID, JoinedAt: joinedAt}
}
