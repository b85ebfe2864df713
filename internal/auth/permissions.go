package auth

import "fmt"

// Authorize checks that every required permission is present in the granted
// set. An empty requirement always succeeds.
func Authorize(granted []string, required ...string) error {
	for _, req := range required {
		if !contains(granted, req) {
			return fmt.Errorf("%w: missing permission %q", ErrNotEnoughRights, req)
		}
	}
	return nil
}

func contains(set []string, want string) bool {
	for _, s := range set {
		if s == want {
			return true
		}
	}
	return false
}
