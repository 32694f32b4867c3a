package web

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages surfaced as field-level validation errors
const (
	msgRequired         = "This field is required."
	msgInvalidEmail     = "Enter a valid email address."
	msgPasswordTooShort = "Ensure the password has at least 8 characters."
	msgPasswordMismatch = "The two password fields didn't match."
	msgTooLong          = "This value is too long."
	msgUnknownGroup     = "Choose an existing group."
	msgNotAnImage       = "Upload a valid image file."
	msgImageTooLarge    = "The image is too large."
	msgUsernameTaken    = "A user with that username already exists. Please choose a different login."
	msgBadCredentials   = "Please enter a correct username and password."
)

// PostForm carries the new-post / edit-post fields
type PostForm struct {
	Text  string `form:"text"`
	Group string `form:"group"`
}

// CommentForm carries the add-comment fields
type CommentForm struct {
	Text string `form:"text" binding:"required"`
}

// SignupForm carries the registration fields
type SignupForm struct {
	FirstName       string `form:"first_name" binding:"max=30"`
	LastName        string `form:"last_name" binding:"max=150"`
	Username        string `form:"username" binding:"required,max=150"`
	Email           string `form:"email" binding:"omitempty,email"`
	Password        string `form:"password1" binding:"required,min=8"`
	PasswordConfirm string `form:"password2" binding:"required,eqfield=Password"`
}

// LoginForm carries the login fields
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// fieldErrors maps binding failures to per-field messages for
// re-rendering the form
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["__all__"] = "Invalid form submission."
		return out
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = msgRequired
		case "email":
			out[field] = msgInvalidEmail
		case "min":
			out[field] = msgPasswordTooShort
		case "eqfield":
			out[field] = msgPasswordMismatch
		case "max":
			out[field] = msgTooLong
		default:
			out[field] = "Invalid value."
		}
	}
	return out
}
