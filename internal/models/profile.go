package models

// ActorProfile is the cached display projection of a donor or recipient,
// read from the users collection and memoized for the process lifetime.
type ActorProfile struct {
	ID                  string `json:"id"`
	DisplayName         string `json:"displayName"`
	Email               string `json:"email,omitempty"`
	OrganizationDetails string `json:"organizationDetails,omitempty"`
}

// DecodeProfile rebuilds an ActorProfile from a stored user document.
func DecodeProfile(id string, data map[string]any) ActorProfile {
	p := ActorProfile{
		ID:                  id,
		DisplayName:         asString(data["displayName"]),
		Email:               asString(data["email"]),
		OrganizationDetails: asString(data["organizationDetails"]),
	}
	if p.DisplayName == "" {
		// Some older user documents only carry a plain name field.
		p.DisplayName = asString(data["name"])
	}
	return p
}
