package auth

import (
	"fmt"
	"os"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// VerifyTOTP checks a 6-digit code against the configured secret.
// An empty secret means the second factor is disabled and any code passes.
func VerifyTOTP(code, secret string) bool {
	if secret == "" {
		return true
	}
	return totp.Validate(code, secret)
}

// ProvisionTOTP generates a fresh TOTP secret for the admin account and
// writes a provisioning QR code PNG to qrPath. The returned secret must be
// stored in ADMIN_TOTP_SECRET to take effect.
func ProvisionTOTP(issuer, account, qrPath string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp key: %w", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	if err := os.WriteFile(qrPath, png, 0o600); err != nil {
		return "", fmt.Errorf("write qr code: %w", err)
	}

	return key.Secret(), nil
}
