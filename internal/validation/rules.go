// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package validation

import "github.com/go-playground/validator/v10"

// Rule is a single check on a field with the message reported when it fails.
type Rule struct {
	Message string
	check   func(fields *validator.Validate, payload Payload, name string) bool
}

// Field is a named payload field and the rules applied to it, in order.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered list of fields. The first failing rule wins.
type Schema []Field

// Required fails when the field was not sent at all.
func Required(message string) Rule {
	return Rule{
		Message: message,
		check: func(_ *validator.Validate, payload Payload, name string) bool {
			_, ok := payload[name]
			return ok
		},
	}
}

// Tag checks the field's value with a go-playground/validator tag such as
// "email" or "min=6". An absent field passes; pair with Required to forbid it.
func Tag(tag, message string) Rule {
	return Rule{
		Message: message,
		check: func(fields *validator.Validate, payload Payload, name string) bool {
			value, ok := payload[name]
			if !ok {
				return true
			}
			return fields.Var(value, tag) == nil
		},
	}
}

// EqualsField fails when the field's value differs from other's.
func EqualsField(other, message string) Rule {
	return Rule{
		Message: message,
		check: func(_ *validator.Validate, payload Payload, name string) bool {
			return payload[name] == payload[other]
		},
	}
}

func (s Schema) evaluate(fields *validator.Validate, payload Payload) Result {
	for _, field := range s {
		for _, rule := range field.Rules {
			if !rule.check(fields, payload, field.Name) {
				return Result{Field: field.Name, Message: rule.Message}
			}
		}
	}
	return Result{}
}
