package entity

// Session binds a browser session token to a user. Flashes are one-shot
// notices shown on the next rendered page.
type Session struct {
	ID        string   `gorm:"primaryKey;size:36"`
	UserID    int      `gorm:"not null;index"` // References: users(id)
	Flashes   []string `gorm:"serializer:json"`
	CreatedAt int64    `gorm:"autoCreateTime:milli"`
	ExpiresAt int64    `gorm:"not null"`
}

func (s *Session) IsExpired(nowMillis int64) bool {
	return nowMillis >= s.ExpiresAt
}
