package userview

import (
	"fmt"
	"io"
	"strings"
)

// Render strings
const (
	LoadingText  = "Loading..."
	NotFoundText = "No user found"
)

// Lines renders s as display lines.
// A Loaded user always shows ID and both names; the street line appears
// only when the address carries a non-empty street.
func Lines(s State) []string {
	switch st := s.(type) {
	case Loaded:
		u := st.User
		if u == nil {
			return []string{NotFoundText}
		}
		lines := []string{
			"ID: " + u.ID,
			"Name: " + u.FirstName,
			"Name: " + u.LastName,
		}
		if u.HasStreet() {
			lines = append(lines, "Address: "+u.Street())
		}
		return lines
	case Empty:
		return []string{NotFoundText}
	case Failed:
		reason := "unknown error"
		if st.Reason != nil {
			reason = st.Reason.Error()
		}
		return []string{"Failed to load user: " + reason}
	default:
		return []string{LoadingText}
	}
}

// Text renders s as newline-joined lines.
func Text(s State) string {
	return strings.Join(Lines(s), "\n")
}

// Write renders s to w, one line per row.
func Write(w io.Writer, s State) error {
	for _, line := range Lines(s) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
