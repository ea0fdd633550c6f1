package remote

import (
	"fmt"
	"os"
	"path/filepath"
)

// Session files below this size are treated as corrupt; real session files
// carry key material and are well over 1KB.
const minSessionSize = 100

// SessionStore manages per-user session credential files on disk
type SessionStore struct {
	dir string
}

// NewSessionStore creates a store rooted at dir
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

// Path returns the session file path for a user
func (s *SessionStore) Path(userID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("user_%d.session", userID))
}

// IsValid reports whether a non-trivial session file exists for the user
func (s *SessionStore) IsValid(userID int64) bool {
	info, err := os.Stat(s.Path(userID))
	if err != nil {
		return false
	}
	return info.Size() >= minSessionSize
}

// Remove deletes the user's session file. Missing files are not an error.
func (s *SessionStore) Remove(userID int64) error {
	err := os.Remove(s.Path(userID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
