package config

type Tokens struct{}

var _ TokenConfig = Tokens{}

// GetTokenSecret is the shared HMAC secret used to sign and verify
// session tokens. Not suitable for production unchanged.
func (Tokens) GetTokenSecret() string {
	return GetEnv("TOKEN_SECRET", "local-development-secret")
}

func (Tokens) GetIssuer() string {
	return GetEnv("TOKEN_ISSUER", "com.shellmonger.mynotes")
}
