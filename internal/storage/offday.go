package storage

// OffDay marks one user as off for one date. (UserName, OffDate) is unique.
type OffDay struct {
	ID       int64  `json:"id"`
	UserName string `json:"user_name"`
	OffDate  string `json:"off_date"`
	Reason   string `json:"reason"`
}
