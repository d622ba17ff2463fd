package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/jwtx"
)

// keyID names the single signing key in the JWKS.
const keyID = "mockbank-1"

// InitSigningKeys builds the signer and the key set that verifies its tokens.
//
// With no key file the key is generated in memory and every token becomes
// invalid on restart. With a key file the key is read from it, or generated
// and written there (mode 0600) on first start.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*jwtx.EdDSASigner, *jwtx.KeySet, error) {
	pemKey, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(keyID, pemKey)
	if err != nil {
		return nil, nil, err
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, err
	}

	if cfg.SigningKeyFile == "" {
		logger.Warn("using an ephemeral signing key, tokens will not survive a restart")
	} else {
		logger.Info("signing key loaded", "kid", keyID, "path", cfg.SigningKeyFile)
	}
	return signer, keys, nil
}
