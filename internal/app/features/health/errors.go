package health

import "errors"

var errNotConfigured = errors.New("not configured")
