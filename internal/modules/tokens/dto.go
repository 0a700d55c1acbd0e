package tokens

// RegisterDeviceTokenRequest is the device token registration payload.
type RegisterDeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RemoveDeviceTokenRequest removes one token on logout.
type RemoveDeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
