package llm

import (
	"strings"

	"github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// credentialPrefixes is the cheap format check applied to caller-supplied keys
var credentialPrefixes = map[string]string{
	ProviderAnthropic: "sk-ant-",
	ProviderOpenAI:    "sk-",
	ProviderGoogle:    "AIza",
}

// CredentialPrefix returns the required key prefix for provider
func CredentialPrefix(provider string) string {
	return credentialPrefixes[provider]
}

// ResolveCredential picks the key for one call. A caller-supplied key must
// carry the provider prefix; with neither key available the call is a
// configuration error. No network access happens here.
func ResolveCredential(provider, defaultKey, callerKey string) (string, error) {
	callerKey = strings.TrimSpace(callerKey)
	if callerKey != "" {
		if prefix := CredentialPrefix(provider); prefix != "" && !strings.HasPrefix(callerKey, prefix) {
			return "", skills.NewError(skills.KindInvalidCredential, "Invalid API key format", nil)
		}
		return callerKey, nil
	}

	if strings.TrimSpace(defaultKey) == "" {
		return "", skills.NewError(skills.KindConfiguration, "Skill generation is not configured. Provide an API key.", nil)
	}
	return defaultKey, nil
}
