package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cityfeedback/feedback-service/internal/policy"
	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// RequirePrincipal returns the authenticated caller or an UNAUTHORIZED error.
func RequirePrincipal(c *fiber.Ctx) (*Principal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal == nil || principal.UserID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// RequireSelfOr lets callers act on their own account, and otherwise
// requires that their role allows action.
func RequireSelfOr(c *fiber.Ctx, targetUserID string, action policy.Action) (*Principal, error) {
	principal, err := RequirePrincipal(c)
	if err != nil {
		return nil, err
	}
	if principal.UserID == targetUserID {
		return principal, nil
	}
	if err := policy.AuthorizeUser(principal.User, action); err != nil {
		return nil, err
	}
	return principal, nil
}
