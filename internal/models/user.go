package models

import (
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
	"github.com/magabrotheeeer/tour-booking/internal/lib/password"
)

// Роли пользователей.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// DefaultPhoto — аватар, который получает новый пользователь.
const DefaultPhoto = "default.jpg"

// Roles — все допустимые роли.
var Roles = []string{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin}

// User представляет зарегистрированного пользователя системы.
//
// Хеш пароля, признак активности и поля сброса пароля никогда не попадают в JSON.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                 string             `bson:"name" json:"name,omitempty" validate:"required"`
	Email                string             `bson:"email" json:"email,omitempty" validate:"required,email"`
	Photo                string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role                 string             `bson:"role" json:"role,omitempty" validate:"required,oneof=user guide lead-guide admin"`
	Password             string             `bson:"password" json:"-"`
	PasswordChangedAt    *time.Time         `bson:"passwordChangedAt,omitempty" json:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool               `bson:"active" json:"-"`
	Version              int                `bson:"__v" json:"__v,omitempty"`
}

var userMessages = map[string]string{
	"name.required":  "Please tell us your name!",
	"email.required": "Please provide your email",
	"email.email":    "Please provide a valid email",
	"role.oneof":     "Role is either: user, guide, lead-guide, admin",
}

func (u *User) GetID() primitive.ObjectID { return u.ID }

func (u *User) SetID(id primitive.ObjectID) { u.ID = id }

// HasRole сообщает, входит ли роль пользователя в roles.
func (u *User) HasRole(roles ...string) bool { return slices.Contains(roles, u.Role) }

// BeforeWrite приводит email к нижнему регистру и на создании выставляет роль, фото и активность.
func (u *User) BeforeWrite(op Op, _ time.Time) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if op == OpCreate {
		if u.Role == "" {
			u.Role = RoleUser
		}
		if u.Photo == "" {
			u.Photo = DefaultPhoto
		}
		u.Active = true
	}
}

// Validate проверяет поля пользователя.
func (u *User) Validate(_ Op) []apperr.FieldError {
	return checkStruct(u, userMessages)
}

// ChangedPasswordAfter сообщает, менялся ли пароль после выпуска токена (iat в секундах).
func (u *User) ChangedPasswordAfter(issuedAt int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt
}

// PublicProfile — сокращённое представление пользователя во вложенных документах.
type PublicProfile struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Photo string             `json:"photo,omitempty"`
}

// Profile возвращает публичный профиль пользователя.
func (u *User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Photo: u.Photo}
}

// PasswordChange — новый пароль с подтверждением.
type PasswordChange struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

var passwordMessages = map[string]string{
	"password.required":        "Please provide a password",
	"password.min":             "A password must have at least 8 characters",
	"passwordConfirm.required": "Please confirm your password",
	"passwordConfirm.eqfield":  "Passwords are not the same!",
}

// MsgPasswordTooLong — пароль не помещается в bcrypt.
const MsgPasswordTooLong = "A password must have less or equal then 72 bytes"

// Validate проверяет длину пароля и совпадение подтверждения.
func (p PasswordChange) Validate() []apperr.FieldError {
	fields := checkStruct(p, passwordMessages)
	if len(p.Password) > password.MaxLength {
		fields = append(fields, apperr.FieldError{Field: "password", Message: MsgPasswordTooLong})
	}
	return fields
}
