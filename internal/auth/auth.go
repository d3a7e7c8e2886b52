// Package auth verifies caller identity: bearer tokens issued locally or by
// Casdoor, password hashes, and the bot-verification gate on signup/signin.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrBotCheckFailed   = errors.New("bot verification failed")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrNoVerifierAccept = errors.New("no verifier accepted the token")
)

// Identity is what a verified bearer token proves about its holder.
type Identity struct {
	UserID string
	Email  string
	// Issuer names the verifier that accepted the token.
	Issuer string
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier struct {
	verifiers []TokenVerifier
}

func NewChainVerifier(verifiers ...TokenVerifier) *ChainVerifier {
	return &ChainVerifier{verifiers: verifiers}
}

func (c *ChainVerifier) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	for _, v := range c.verifiers {
		identity, err := v.VerifyToken(ctx, token)
		if err == nil {
			return identity, nil
		}
	}
	return nil, ErrNoVerifierAccept
}

// BotVerifier is the pass/fail challenge gate in front of signup and signin.
type BotVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// NoopBotVerifier accepts every token. Used when no challenge secret is configured.
type NoopBotVerifier struct{}

func (NoopBotVerifier) Verify(context.Context, string, string) error { return nil }
