package model

type Recipe struct {
	ID                int64  `json:"id" db:"id"`
	Title             string `json:"title" db:"title"`
	Instructions      string `json:"instructions" db:"instructions"`
	MinutesToComplete *int   `json:"minutes_to_complete" db:"minutes_to_complete"`
	UserID            int64  `json:"-" db:"user_id"`
	User              *User  `json:"user" db:"-"`
}
