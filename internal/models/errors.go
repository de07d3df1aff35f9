package models

// IsNotFoundError returns whether an error represents a "not found" error.
func IsNotFoundError(err error) bool {
	switch err.(type) {
	case ConnectionNotFoundError, *ConnectionNotFoundError:
		return true
	}
	return false
}

// ConnectionNotFoundError represents when a project has no connection row for
// a platform.
type ConnectionNotFoundError struct{}

func (e ConnectionNotFoundError) Error() string {
	return "Connection not found"
}
