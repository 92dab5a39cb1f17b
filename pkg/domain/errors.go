package domain

import "errors"

// ErrAlreadyConnected is returned when Connect is called more than once on the same connector.
var ErrAlreadyConnected = errors.New("connect already called")

// ErrNotConnected is returned by operations that need an established session.
var ErrNotConnected = errors.New("session not connected")

// ErrHostUnavailable is returned when the host cannot be reached or has not published a context.
var ErrHostUnavailable = errors.New("host unavailable")

// ErrSessionClosed is returned when the host session ended.
var ErrSessionClosed = errors.New("session closed")

// ErrProductNotFound is returned when a product ID is not in the catalog.
var ErrProductNotFound = errors.New("product not found")
