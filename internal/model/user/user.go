package user

import "time"

// User is a registered student account.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    string    `json:"password,omitempty"`
	Name        string    `json:"name"`
	Branch      string    `json:"branch,omitempty"`
	Year        int       `json:"year,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"ratingCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Public strips the password hash for API responses.
func (u User) Public() User {
	u.Password = ""
	return u
}
