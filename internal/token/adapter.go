package token

import "context"

// AccessValidator adapts Service to the transport middleware, which only
// needs subject and JTI out of a bearer token.
type AccessValidator struct {
	svc *Service
}

func NewAccessValidator(svc *Service) *AccessValidator {
	return &AccessValidator{svc: svc}
}

func (v *AccessValidator) ValidateAccess(ctx context.Context, tokenString string) (userID, jti string, err error) {
	claims, err := v.svc.Validate(ctx, tokenString, KindAccess)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.ID, nil
}
