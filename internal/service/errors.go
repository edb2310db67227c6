package service

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

var (
	ErrItemNameRequired     = errors.New("item name required")
	ErrIncompletePack       = errors.New("all active packs must have type and prices")
	ErrStockSelectionNeeded = errors.New("item and pack type required")
	ErrInvalidStockQuantity = errors.New("packs to add must be at least 1")
	ErrNothingToExport      = errors.New("nothing to export")
)

// sentence turns a validation error into notification text.
func sentence(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
