package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/course-review-service/internal/config"
	"github.com/SAP-F-2025/course-review-service/internal/models"
)

// UserLookup finds the local account a Casdoor identity maps onto
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// CasdoorVerifier accepts tokens issued by Casdoor and maps them to local users by email
type CasdoorVerifier struct {
	client *casdoorsdk.Client
	users  UserLookup
}

func NewCasdoorVerifier(cfg config.CasdoorConfig, users UserLookup) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorVerifier{client: client, users: users}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (string, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email := strings.TrimSpace(claims.User.Email)
	if email == "" {
		return "", fmt.Errorf("%w: casdoor token carries no email", ErrInvalidToken)
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%w: no local account for casdoor user %s", ErrInvalidToken, claims.User.Name)
	}
	return user.ID, nil
}
