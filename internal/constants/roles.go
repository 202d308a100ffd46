package constants

const (
	Admin    = "Admin"
	Director = "Director"
	Manager  = "Manager"
)
