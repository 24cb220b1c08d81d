package domain

// DefaultUserID is the single seeded user every unattributed record belongs to
const DefaultUserID = "user_1"

// User is a CRM operator. Authentication is out of scope, users are referenced by id only.
type User struct {
	ID        string  `db:"id" json:"id"`
	Email     string  `db:"email" json:"email"`
	Name      string  `db:"name" json:"name"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
	Role      string  `db:"role" json:"role"` // admin, manager, member
	CreatedAt string  `db:"created_at" json:"created_at"`
	UpdatedAt string  `db:"updated_at" json:"updated_at"`
}
