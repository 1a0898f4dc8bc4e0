package auth

import "context"

type contextKey struct{}

// AuthContext carries the resolved identity for a request. FamilyID and
// ProfileID are zero until the provisioner has run / a profile has been
// selected.
type AuthContext struct {
	AccountID int64
	FamilyID  int64
	ProfileID int64
	SessionID int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func AccountID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.AccountID
}

func FamilyID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.FamilyID
}

func ProfileID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.ProfileID
}

// HasProfile reports whether the request has a selected profile.
func HasProfile(ctx context.Context) bool {
	return ProfileID(ctx) != 0
}
