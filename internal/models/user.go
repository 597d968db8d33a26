package models

// User is the locally cached copy of an identity record. The id is assigned
// by the external user service; this service never mints users of its own.
type User struct {
	ID        string `bson:"_id" json:"userId"`
	Username  string `bson:"username" json:"username"`
	Email     string `bson:"email" json:"email"`
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
}
