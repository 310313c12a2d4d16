package storage

import "time"

// User is the credential and profile record. The password hash is
// never serialized.
type User struct {
	ID             uint      `gorm:"primaryKey"                             json:"id"`
	Username       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(255)"                      json:"email"`
	FirstName      string    `gorm:"type:varchar(255)"                      json:"first_name"`
	LastName       string    `gorm:"type:varchar(255)"                      json:"last_name"`
	HashedPassword string    `                                              json:"-"`
	IsActive       bool      `gorm:"default:true"                           json:"is_active"`
	PhoneNumber    string    `gorm:"type:varchar(64)"                       json:"phone_number,omitempty"`
	AddressID      *uint     `                                              json:"address_id,omitempty"`
	CreatedAt      time.Time `                                              json:"created_at"`
	UpdatedAt      time.Time `                                              json:"updated_at"`
}

// Todo belongs to exactly one user via OwnerID.
type Todo struct {
	ID          uint      `gorm:"primaryKey"     json:"id"`
	Title       string    `gorm:"not null"       json:"title"`
	Description string    `gorm:"type:text"      json:"description"`
	Priority    int       `gorm:"default:1"      json:"priority"` // 1..5
	Completed   bool      `gorm:"default:false"  json:"completed"`
	OwnerID     uint      `gorm:"index;not null" json:"-"`
	CreatedAt   time.Time `                      json:"created_at"`
	UpdatedAt   time.Time `                      json:"updated_at"`
}

// Address is a postal address profile linked from User.AddressID.
type Address struct {
	ID         uint   `gorm:"primaryKey"        json:"id"`
	Address1   string `gorm:"not null"          json:"address1"`
	Address2   string `                         json:"address2,omitempty"`
	City       string `gorm:"not null"          json:"city"`
	State      string `                         json:"state,omitempty"`
	Country    string `gorm:"not null"          json:"country"`
	PostalCode string `gorm:"type:varchar(32)"  json:"postalcode"`
	AptNum     string `gorm:"type:varchar(32)"  json:"apt_num,omitempty"`
}
