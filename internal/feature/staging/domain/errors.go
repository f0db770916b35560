// Package domain defines domain-level errors for the staging feature.
package domain

import "errors"

// ErrCredentialsRegistered indicates that cloud credentials were registered by an earlier run
// in this process. Staging treats it as success and reuses them.
var ErrCredentialsRegistered = errors.New("cloud credentials already registered")
