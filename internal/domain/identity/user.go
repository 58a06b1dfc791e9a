package identity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/destocard/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is a coarse access role. Every account holds RoleUser.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Roles is persisted as a JSON array in a text column
type Roles []Role

// Value implements driver.Valuer
func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (r *Roles) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*r = Roles{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Roles", value)
	}
	return json.Unmarshal(raw, r)
}

// SubscriptionStatus mirrors the Stripe subscription status of a seller
type SubscriptionStatus string

const (
	SubscriptionNone     SubscriptionStatus = ""
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User is a marketplace account. The same account can buy and sell.
type User struct {
	shared.BaseAggregateRoot
	Email              string             `gorm:"type:varchar(180);not null;uniqueIndex"`
	Username           string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	PasswordHash       string             `gorm:"type:varchar(255);not null"`
	FirstName          string             `gorm:"type:varchar(100)"`
	LastName           string             `gorm:"type:varchar(100)"`
	AvatarURL          string             `gorm:"type:varchar(500)"`
	Roles              Roles              `gorm:"type:text;not null"`
	StripeCustomerID   string             `gorm:"type:varchar(100);index"`
	SubscriptionID     string             `gorm:"type:varchar(100)"`
	SubscriptionStatus SubscriptionStatus `gorm:"type:varchar(30)"`
	LastLoginAt        *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a user holding ROLE_USER
func NewUser(email, username, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Username:          username,
		Roles:             Roles{RoleUser},
	}
	if err := user.setPasswordHash(password); err != nil {
		return nil, err
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// ChangePassword checks the current password before setting a new one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Le mot de passe actuel est incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword replaces the password hash
func (u *User) SetPassword(newPassword string) error {
	if err := u.setPasswordHash(newPassword); err != nil {
		return err
	}
	u.Touch()
	u.IncrementVersion()
	return nil
}

func (u *User) setPasswordHash(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Impossible de chiffrer le mot de passe")
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UpdateProfile sets the optional profile fields
func (u *User) UpdateProfile(firstName, lastName, avatarURL string) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if len(firstName) > 100 || len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Le nom ne peut pas dépasser 100 caractères")
	}
	if len(avatarURL) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "L'URL de l'avatar est trop longue")
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.AvatarURL = avatarURL
	u.Touch()
	u.IncrementVersion()
	return nil
}

// FullName returns "First Last", or the username when both are empty
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// HasRole reports whether the user holds role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds ROLE_ADMIN
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// GrantRole adds a role; granting a held role is a no-op
func (u *User) GrantRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Rôle inconnu")
	}
	if u.HasRole(role) {
		return nil
	}
	u.Roles = append(u.Roles, role)
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserRoleGrantedEvent(u, role))
	return nil
}

// RevokeRole removes a role. ROLE_USER cannot be revoked.
func (u *User) RevokeRole(role Role) error {
	if role == RoleUser {
		return shared.NewDomainError("INVALID_ROLE", "Le rôle utilisateur ne peut pas être retiré")
	}
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
	u.Touch()
	u.IncrementVersion()
	return nil
}

// RoleNames returns the roles as plain strings, for token claims
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = string(r)
	}
	return names
}

// SetStripeCustomer links the account to a Stripe customer
func (u *User) SetStripeCustomer(customerID string) {
	u.StripeCustomerID = customerID
	u.Touch()
	u.IncrementVersion()
}

// SetSubscription records the seller subscription state
func (u *User) SetSubscription(subscriptionID string, status SubscriptionStatus) {
	u.SubscriptionID = subscriptionID
	u.SubscriptionStatus = status
	u.Touch()
	u.IncrementVersion()
}

// IsPro reports whether the seller subscription is currently usable
func (u *User) IsPro() bool {
	return u.SubscriptionStatus == SubscriptionActive || u.SubscriptionStatus == SubscriptionTrialing
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmail lowercases and trims an email the way it is stored
func NormalizeEmail(email string) string {
	return normalizeEmail(email)
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Le pseudo est obligatoire")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Le pseudo doit contenir au moins 3 caractères")
	}
	if len(username) > 50 {
		return shared.NewDomainError("INVALID_USERNAME", "Le pseudo ne peut pas dépasser 50 caractères")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Le pseudo ne peut contenir que des lettres, chiffres, tirets, points et underscores")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Le mot de passe est obligatoire")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Le mot de passe doit contenir au moins 8 caractères")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Le mot de passe ne peut pas dépasser 72 caractères")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Le mot de passe doit contenir au moins une lettre et un chiffre")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "L'adresse email est obligatoire")
	}
	if len(email) > 180 {
		return shared.NewDomainError("INVALID_EMAIL", "L'adresse email est trop longue")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "L'adresse email n'est pas valide")
	}
	return nil
}
