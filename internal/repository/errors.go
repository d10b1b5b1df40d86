// Package repository contains the MySQL data access layer.  This file
// defines sentinel errors shared across repositories so that handlers
// can map failure scenarios to HTTP responses: ErrForbidden becomes a
// 403, the various not-found values become 404s, and the uniqueness
// conflicts become 409s.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.
var ErrForbidden = errors.New("forbidden")

// ErrSiteNotFound indicates that a site row was not located.
var ErrSiteNotFound = errors.New("site not found")

// ErrSlotNotFound indicates that an ad slot row was not located.
var ErrSlotNotFound = errors.New("ad slot not found")

// ErrSiteURLExists is returned when registering a site whose URL is
// already claimed by another account.
var ErrSiteURLExists = errors.New("site url already exists")

// ErrEmailExists is returned when registering an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")
