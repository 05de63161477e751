package model

type User struct {
	ID       int64    `json:"id" db:"id"`
	Username string   `json:"username" db:"username"`
	Password Password `json:"-" db:"password_hash"`
	ImageURL *string  `json:"image_url" db:"image_url"`
	Bio      *string  `json:"bio" db:"bio"`
}

func (u *User) SetPassword(plaintext string) error {
	return u.Password.Set(plaintext)
}

func (u *User) VerifyPassword(plaintext string) bool {
	return u.Password.Verify(plaintext)
}
