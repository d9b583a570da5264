package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a storefront account. Accounts are created lazily the first time
// a sign-in link is verified for an email address.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// userDoc is the document-store shape of a user.
type userDoc struct {
	ID        string    `bson:"id"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"created_at"`
}

func encodeUser(u User) userDoc {
	return userDoc{
		ID:        u.ID.String(),
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func decodeUser(doc userDoc) (User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:        id,
		Email:     doc.Email,
		CreatedAt: doc.CreatedAt,
	}, nil
}
