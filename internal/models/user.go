// server/internal/models/user.go
package models

// Dealership roles, in increasing order of privilege.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User matches the document in MongoDB.
type User struct {
	Email    string `bson:"email"`
	Name     string `bson:"name"`
	Password string `bson:"password"`
	Role     string `bson:"role"`
	Status   string `bson:"status"`
}
