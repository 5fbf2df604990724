package wsclient

import (
	"go.uber.org/zap"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
)

func zapNop() *zap.Logger { return zap.NewNop() }

// userTokens accepts any token and treats it as the user id.
type userTokens struct{}

func (userTokens) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	return &models.TokenClaims{UserID: token}, nil
}
