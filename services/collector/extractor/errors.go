package extractor

import "errors"

// ErrInterfaceNotFound signals that the report does not contain the requested interface
var ErrInterfaceNotFound = errors.New("interface not found")

// ErrAttributeMissing signals that the interface lacks one of the requested counters
var ErrAttributeMissing = errors.New("interface attribute missing")

// ErrInvalidAttributeValue signals that a requested counter is not an integer
var ErrInvalidAttributeValue = errors.New("invalid interface attribute value")
