package auth

import (
	"fmt"

	"golang.org/x/oauth2/clientcredentials"
)

// Conf represents the configuration needed for authentication.
// It includes the client ID, client secret, and the token URL.
type Conf struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AuthURL      string `json:"auth_url"`
}

// Validate checks that every field is set.
func (c Conf) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("client_id and client_secret are required")
	}
	if c.AuthURL == "" {
		return fmt.Errorf("auth_url is required")
	}
	return nil
}

func (c *Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.AuthURL,
	}
}
