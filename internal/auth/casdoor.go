package auth

import (
	"context"
	"fmt"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

const casdoorIssuer = "casdoor"

// CasdoorVerifier accepts access tokens issued by the university Casdoor instance.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(endpoint, clientID, clientSecret, certificate, organization, application string) *CasdoorVerifier {
	return &CasdoorVerifier{
		client: casdoorsdk.NewClient(endpoint, clientID, clientSecret, certificate, organization, application),
	}
}

func (v *CasdoorVerifier) VerifyToken(_ context.Context, token string) (*Identity, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Id == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: claims.Id, Email: claims.Email, Issuer: casdoorIssuer}, nil
}
