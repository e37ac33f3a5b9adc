package user

// User represents the user record served by the remote user endpoint.
// The upstream payload is not contractually guaranteed to match this shape,
// so every field may arrive empty and Address may be nil.
type User struct {
	ID        string   `json:"id" validate:"required"` // ID identifies the user
	FirstName string   `json:"firstName"`              // FirstName is the given name
	LastName  string   `json:"lastName"`               // LastName is the family name
	Address   *Address `json:"address,omitempty"`      // Address may be absent or null
}

// Address is the postal address nested inside a User.
// City, State and Zip are decoded and carried but never rendered.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Street returns the street line, or "" when the user or its address is absent.
func (u *User) Street() string {
	if u == nil || u.Address == nil {
		return ""
	}
	return u.Address.Street
}

// HasStreet reports whether a street line should be rendered.
func (u *User) HasStreet() bool {
	return u.Street() != ""
}
