package store

import "errors"

// ErrNotFound is returned when an item is missing so HTTP handlers can
// respond with 404
var ErrNotFound = errors.New("product not found")

// ErrBadExpiryDate is returned when a draft or patch carries an expiry date
// the classifier cannot parse
var ErrBadExpiryDate = errors.New("invalid expiry date")
