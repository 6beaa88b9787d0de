package dto

import "time"

type SignInResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

type MeResponse struct {
	Account   AccountResponse `json:"account"`
	ExpiresAt time.Time       `json:"expires_at"`
}
