package services

import "errors"

// ErrBaseNotFound is returned when no base matches the request host and no default is configured.
var ErrBaseNotFound = errors.New("base not found")

// ErrNoRecipient is returned when neither the base nor the site config names a contact address.
var ErrNoRecipient = errors.New("no contact email configured")
