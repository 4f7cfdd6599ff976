package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrMissingCredential = errors.New("missing provider credential")

// CredentialProvider 为服务商提供调用凭证，密钥不再硬编码在代码中
type CredentialProvider interface {
	Credential(provider ProviderConfig) (string, error)
}

// EnvCredentials 优先读取 api_key_env 指定的环境变量，其次使用配置文件中的 api_key
type EnvCredentials struct {
	Lookup func(key string) (string, bool)
}

func NewEnvCredentials() *EnvCredentials {
	return &EnvCredentials{Lookup: os.LookupEnv}
}

func (c *EnvCredentials) Credential(provider ProviderConfig) (string, error) {
	if provider.APIKeyEnv != "" && c.Lookup != nil {
		if v, ok := c.Lookup(provider.APIKeyEnv); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	if key := strings.TrimSpace(provider.APIKey); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingCredential, provider.Name)
}
