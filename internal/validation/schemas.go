// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package validation

// Payload field names as they appear in request bodies.
const (
	FieldUsername             = "username"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "passwordConfirmation"
)

// Messages reported to clients.
const (
	MsgEmailRequired        = "Email is required."
	MsgEmailInvalid         = "Invalid email."
	MsgUsernameRequired     = "Username is required."
	MsgUsernameTooShort     = "Username should be minimum 6 characters."
	MsgPasswordRequired     = "Password is required."
	MsgPasswordTooShort     = "Password should be minimum 8 characters."
	MsgPasswordTooLong      = "Password should be maximum 64 characters."
	MsgConfirmationRequired = "Confirm password is required."
	MsgPasswordsDiffer      = "Passwords do not match."
)

func emailField() Field {
	return Field{Name: FieldEmail, Rules: []Rule{
		Required(MsgEmailRequired),
		Tag("email", MsgEmailInvalid),
	}}
}

// SignupSchema is email, then username, then password and its confirmation.
func SignupSchema() Schema {
	return Schema{
		emailField(),
		{Name: FieldUsername, Rules: []Rule{
			Required(MsgUsernameRequired),
			Tag("min=6", MsgUsernameTooShort),
		}},
		{Name: FieldPassword, Rules: []Rule{
			Required(MsgPasswordRequired),
			Tag("min=8", MsgPasswordTooShort),
			Tag("max=64", MsgPasswordTooLong),
		}},
		{Name: FieldPasswordConfirmation, Rules: []Rule{
			Required(MsgConfirmationRequired),
			EqualsField(FieldPassword, MsgPasswordsDiffer),
		}},
	}
}

// SigninSchema checks presence and email shape only; password length rules
// apply at signup.
func SigninSchema() Schema {
	return Schema{
		emailField(),
		{Name: FieldPassword, Rules: []Rule{
			Required(MsgPasswordRequired),
		}},
	}
}
