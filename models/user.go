package models

// User is the account record. The password hash is stored under "password"
// and never serialized to JSON.
type User struct {
	PK           string `dynamodbav:"PK" json:"-"`
	SK           string `dynamodbav:"SK" json:"-"`
	GSI1PK       string `dynamodbav:"GSI1PK" json:"-"`
	GSI1SK       string `dynamodbav:"GSI1SK" json:"-"`
	UserID       string `dynamodbav:"userId" json:"userId"`
	Username     string `dynamodbav:"username" json:"username"`
	PasswordHash string `dynamodbav:"password" json:"-"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

func NewUser(userID, username, passwordHash, createdAt string) User {
	key := UserKey(userID)
	idx := UsernameIndexKey(username)
	return User{
		PK:           key.PK,
		SK:           key.SK,
		GSI1PK:       idx.PK,
		GSI1SK:       idx.SK,
		UserID:       userID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
}

// UsernameGuard reserves a username for one user id.
type UsernameGuard struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	UserID   string `dynamodbav:"userId"`
	Username string `dynamodbav:"username"`
}

func NewUsernameGuard(username, userID string) UsernameGuard {
	key := UsernameGuardKey(username)
	return UsernameGuard{PK: key.PK, SK: key.SK, UserID: userID, Username: username}
}
