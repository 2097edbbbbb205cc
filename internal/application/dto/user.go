package dto

// TimezoneRequest is the DTO for setting a user's timezone.
type TimezoneRequest struct {
	Timezone string `json:"timezone"`
}

// TimezoneResponse reports the timezone stored for a user.
type TimezoneResponse struct {
	UserID   string `json:"user_id"`
	Timezone string `json:"timezone"`
}
