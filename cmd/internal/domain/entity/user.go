package entity

// AdminUsername is the protected bootstrap account. It always exists and
// cannot be deleted, renamed, demoted or disabled.
const AdminUsername = "admin"

type User struct {
	ID           int    `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsAdmin      bool   `gorm:"not null"`
	IsActive     bool   `gorm:"not null"`
	CreatedAt    int64  `gorm:"autoCreateTime:milli"`
	UpdatedAt    int64  `gorm:"autoUpdateTime:milli"`
}

func (u *User) IsProtected() bool {
	return u.Username == AdminUsername
}
