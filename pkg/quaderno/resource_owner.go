package quaderno

import "github.com/go-training/quaderno-connect/pkg/core"

var _ core.ResourceOwner = (*ResourceOwner)(nil)

// ResourceOwner is the Quaderno account returned by /api/authorization.
type ResourceOwner struct {
	response map[string]any
}

// NewResourceOwner wraps a decoded account response.
func NewResourceOwner(response map[string]any) *ResourceOwner {
	if response == nil {
		response = map[string]any{}
	}
	return &ResourceOwner{response: response}
}

// AccountID returns the account_id value, or "" when it is absent.
func (o *ResourceOwner) AccountID() string {
	return core.StringValue(o.response["account_id"])
}

// ID returns the account ID.
func (o *ResourceOwner) ID() string {
	return o.AccountID()
}

// RawAttributes returns the account response as received.
func (o *ResourceOwner) RawAttributes() map[string]any {
	return o.response
}
