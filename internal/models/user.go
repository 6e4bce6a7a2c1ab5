package models

// User represents a registered account. The password column holds a bcrypt
// hash and must never be serialized; AuthToken is the currently issued
// bearer token, NULL while logged out.
type User struct {
	ID            int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string  `gorm:"uniqueIndex;size:256;not null" json:"email"`
	FirstName     string  `gorm:"size:64;not null" json:"firstName"`
	LastName      string  `gorm:"size:64;not null" json:"lastName"`
	ImageFilename *string `gorm:"size:64" json:"-"`
	Password      string  `gorm:"size:60;not null" json:"-"`
	AuthToken     *string `gorm:"size:36;index" json:"-"`
}

// Category is read-only reference data for petitions.
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"categoryId"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}
