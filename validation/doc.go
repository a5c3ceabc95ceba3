// Package validation wraps go-playground/validator with json-tag field names
// and domain rules for service registration payloads.
package validation
