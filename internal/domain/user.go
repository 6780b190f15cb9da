package domain

import "time"

// User represents a registered account. Accounts start inactive and become
// active once the activation code from the registration email is confirmed.
type User struct {
	ID             int64
	Username       string
	FirstName      string
	LastName       string
	PhoneNumber    string
	Email          string
	PasswordHash   string
	IsActive       bool
	ActivationCode string
	AvatarKey      string
	DeviceModel    string
	OSVersion      string
	IPAddress      string
	DeviceTime     *time.Time
	Latitude       *float64
	Longitude      *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DeviceInfo captures the client metadata reported at login time.
type DeviceInfo struct {
	DeviceModel string
	OSVersion   string
	IPAddress   string
	DeviceTime  time.Time
	Latitude    float64
	Longitude   float64
}

// Token is an issued access/refresh token pair persisted for audit.
type Token struct {
	ID           int64
	UserID       int64
	AccessToken  string
	RefreshToken string
	TokenType    string
	CreatedAt    time.Time
}
