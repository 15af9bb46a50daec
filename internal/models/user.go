package models

type User struct {
	Username     string
	PasswordHash string
	Voted        bool
}

// Candidate is one row of the fixed ballot. The set is established when the
// store is seeded and never grows at runtime.
type Candidate struct {
	Name  string
	Votes int
}
