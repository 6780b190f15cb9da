package domain

// BusinessCard is a user's public microsite page, addressed by subdomain.
type BusinessCard struct {
	ID          int64
	UserID      int64
	Subdomain   string
	Title       string
	Description string
	Links       string
}
