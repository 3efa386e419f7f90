package domain

// Profile represents the signed-in user's profile record as returned by the
// backend. Date fields are transported as strings in YYYY-MM-DD form.
type Profile struct {
	Username    string `json:"username"`               // Display name
	Email       string `json:"email,omitempty"`        // Account email
	Bio         string `json:"bio,omitempty"`          // Short self-description
	ProfileURL  string `json:"profile_URL,omitempty"`  // Public URL of the profile image
	DateOfBirth string `json:"dob,omitempty"`          // Optional birthdate
	Anniversary string `json:"anniversary,omitempty"`  // Optional anniversary date
	Role        string `json:"role,omitempty"`         // "user" or "admin"
	Instagram   string `json:"instagram,omitempty"`    // Optional social links
	Twitter     string `json:"twitter,omitempty"`
	Facebook    string `json:"facebook,omitempty"`
	LinkedIn    string `json:"linkedin,omitempty"`
}

// IsZero reports whether the profile carries no identifying data.
// A profile refresh returning a zero profile is treated as a failed refresh.
func (p Profile) IsZero() bool {
	return p.Username == "" && p.Email == ""
}

// IsAdmin reports whether the profile belongs to an admin account.
func (p Profile) IsAdmin() bool {
	return p.Role == "admin"
}
