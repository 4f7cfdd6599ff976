package util

import "errors"

var (
	ErrProviderUnavailable   = errors.New("ai provider unavailable")
	ErrProviderStatus        = errors.New("ai provider returned non-2xx status")
	ErrProviderEnvelope      = errors.New("ai provider returned malformed envelope")
	ErrUnsalvageableResponse = errors.New("ai response could not be recovered")
	ErrNoProviderConfigured  = errors.New("no ai provider configured")
	ErrMaterialNotFound      = errors.New("学习资料不存在")
)
