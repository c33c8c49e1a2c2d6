package model

// MunicipalLicense is one normalized row from a town's short-term
// rental license roster, keyed back to the county schedule number.
type MunicipalLicense struct {
	Municipality     string `json:"municipality"`
	ScheduleNumber   string `json:"schedule_number"`
	LicenseID        string `json:"municipal_license_id"`
	Status           string `json:"status"`
	NormalizedStatus string `json:"normalized_status"`
	ExpirationDate   string `json:"expiration_date,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}
