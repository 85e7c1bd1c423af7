package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"colisapp/internal/client"
)

// Session survives between colisctl runs: the bearer token and the cookies
// set by the API, among them the pending-simulation cookie.
type Session struct {
	Token   string        `json:"token,omitempty"`
	Cookies []savedCookie `json:"cookies,omitempty"`

	path string
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadSession reads path; a missing file yields an empty session.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	return s, nil
}

// Apply loads the token and cookies into c.
func (s *Session) Apply(c *client.Client) {
	if s.Token != "" {
		c.SetToken(s.Token)
	}
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, sc := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	if len(cookies) > 0 {
		c.SetCookies(cookies)
	}
}

// Save captures c's cookies and writes the session with owner-only permissions.
func (s *Session) Save(c *client.Client) error {
	s.Cookies = s.Cookies[:0]
	for _, ck := range c.Cookies() {
		s.Cookies = append(s.Cookies, savedCookie{Name: ck.Name, Value: ck.Value})
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
