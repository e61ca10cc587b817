package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrEmailDelivery      = errors.New("verification email could not be delivered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrSessionRevoked     = errors.New("session has been revoked")

	ErrCodeNotFound    = errors.New("code not found")
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeAlreadyUsed = errors.New("code already used")
)
