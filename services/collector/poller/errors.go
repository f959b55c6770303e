package poller

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStatusNotOK signals that the speaker answered with a non-2xx HTTP status code
var ErrStatusNotOK = errors.New("non-2xx HTTP status code")

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrStatusNotOK.Error(), int(e), http.StatusText(int(e)))
}

// Is makes errors.Is(err, ErrStatusNotOK) work on the wrapped status code
func (e errStatusNotOK) Is(target error) bool {
	return target == ErrStatusNotOK
}

// StatusCode returns the HTTP status code carried by the error
func (e errStatusNotOK) StatusCode() int {
	return int(e)
}
