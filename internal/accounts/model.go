package accounts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Profile holds the demographic and lifestyle attributes used to tailor advice.
// Zero values mean "not provided".
type Profile struct {
	Age              int     `json:"age" validate:"gte=0,lte=130"`
	Gender           string  `json:"gender" validate:"max=32"`
	HeightCM         float64 `json:"height_cm" validate:"gte=0,lte=300"`
	WeightKG         float64 `json:"weight_kg" validate:"gte=0,lte=700"`
	HealthConditions string  `json:"health_conditions" validate:"max=1000"`
	Allergies        string  `json:"allergies" validate:"max=1000"`
	Medications      string  `json:"medications" validate:"max=1000"`
	SleepHours       float64 `json:"sleep_hours" validate:"gte=0,lte=24"`
	ActivityLevel    string  `json:"activity_level" validate:"max=64"`
	DietType         string  `json:"diet_type" validate:"max=64"`
	Smoking          bool    `json:"smoking"`
	Alcohol          bool    `json:"alcohol"`
}

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Profile      Profile   `json:"profile"`
}

// RegisterRequest is the payload for POST /auth/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Profile
}

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Summary renders the profile as a single English paragraph for prompts.
func (p Profile) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user is %s years old, gender %s, height %s cm, weight %s kg. ",
		intOr(p.Age, "unknown"),
		stringOr(p.Gender, "unspecified"),
		floatOr(p.HeightCM, "unknown"),
		floatOr(p.WeightKG, "unknown"),
	)
	fmt.Fprintf(&b, "Health conditions: %s. Allergies: %s. Medications: %s. ",
		stringOr(p.HealthConditions, "none"),
		stringOr(p.Allergies, "none"),
		stringOr(p.Medications, "none"),
	)
	fmt.Fprintf(&b, "Sleep hours: %s per night. Activity level: %s. Diet type: %s. ",
		floatOr(p.SleepHours, "unknown"),
		stringOr(p.ActivityLevel, "not specified"),
		stringOr(p.DietType, "not specified"),
	)
	fmt.Fprintf(&b, "Smoking: %s, Alcohol: %s.", yesNo(p.Smoking), yesNo(p.Alcohol))
	return b.String()
}

func intOr(v int, fallback string) string {
	if v <= 0 {
		return fallback
	}
	return strconv.Itoa(v)
}

func floatOr(v float64, fallback string) string {
	if v <= 0 {
		return fallback
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stringOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
