package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTutor   UserRole = "tutor"
	RoleAdmin   UserRole = "admin"
)

// RatingSummary is the running mean of approved reviews crediting a user.
// Rating is 0 whenever ReviewCount is 0.
type RatingSummary struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// Add folds one approved rating into the mean.
func (r *RatingSummary) Add(rating int) {
	total := r.Rating * float64(r.ReviewCount)
	r.ReviewCount++
	r.Rating = (total + float64(rating)) / float64(r.ReviewCount)
}

// Remove reverses Add for one rating. Removing the last rating resets to zero.
func (r *RatingSummary) Remove(rating int) {
	if r.ReviewCount <= 0 {
		r.ReviewCount = 0
		r.Rating = 0
		return
	}
	total := r.Rating * float64(r.ReviewCount)
	r.ReviewCount--
	if r.ReviewCount == 0 {
		r.Rating = 0
		return
	}
	r.Rating = (total - float64(rating)) / float64(r.ReviewCount)
}

type StudentProfile struct {
	Carrera  string `json:"carrera"`
	WhatsApp string `json:"whatsapp"`
	RatingSummary
}

type TutorProfile struct {
	Bio      string   `json:"bio"`
	Subjects []string `json:"subjects"`
	WhatsApp string   `json:"whatsapp"`
	Approved bool     `json:"approved"`
	RatingSummary
}

// UserProfile is a tagged variant: Student is set for students, Tutor for
// tutors, neither for admins.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	Student *StudentProfile `json:"student,omitempty"`
	Tutor   *TutorProfile   `json:"tutor,omitempty"`
}

func (u *UserProfile) IsAdmin() bool { return u.Role == RoleAdmin }
func (u *UserProfile) IsTutor() bool { return u.Role == RoleTutor && u.Tutor != nil }
func (u *UserProfile) IsStudent() bool { return u.Role == RoleStudent && u.Student != nil }

// Ratings returns the rating block of the profile, nil for admins.
func (u *UserProfile) Ratings() *RatingSummary {
	switch {
	case u.Tutor != nil:
		return &u.Tutor.RatingSummary
	case u.Student != nil:
		return &u.Student.RatingSummary
	}
	return nil
}

// HasSubject reports whether the tutor advertises subject.
func (u *UserProfile) HasSubject(subject string) bool {
	if u.Tutor == nil {
		return false
	}
	for _, s := range u.Tutor.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// Principal is the verified acting identity of an operation.
type Principal struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Credential is the locally stored login record for an email address.
type Credential struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
