package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image/png"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"pawpath/internal/server/repositories/repomanager"
)

// TOTPService produces one-time-code enrollment material and verifies
// submitted codes against the secret fixed at registration.
type TOTPService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      string
}

// NewTOTPService constructs a TOTPService with the configured issuer label.
func NewTOTPService(db *sql.DB, m repomanager.RepositoryManager, issuer string) *TOTPService {
	return &TOTPService{db: db, repomanager: m, issuer: issuer}
}

// generateTOTPSecret mints a fresh random base32 secret of standard length.
// Called exactly once per account, at registration.
func generateTOTPSecret(issuer, email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: email,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// provisioningKey rebuilds the otpauth key for the account's stored secret.
func (s *TOTPService) provisioningKey(email, secret string) (*otp.Key, error) {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.issuer)

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + s.issuer + ":" + email,
		RawQuery: v.Encode(),
	}

	return otp.NewKeyFromURL(u.String())
}

// ProvisioningMaterial returns the otpauth URI for the user's secret and a
// scannable PNG rendering of it. Unknown users yield common.ErrorNotFound
// (passed through from the repository).
func (s *TOTPService) ProvisioningMaterial(ctx context.Context, userID int64) (string, []byte, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	key, err := s.provisioningKey(user.Email, user.TOTPSecret)
	if err != nil {
		return "", nil, fmt.Errorf("error building provisioning key: %w", err)
	}

	img, err := key.Image(256, 256)
	if err != nil {
		return "", nil, fmt.Errorf("error rendering QR image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, fmt.Errorf("error encoding QR image: %w", err)
	}

	return key.URL(), buf.Bytes(), nil
}

// VerifyCode checks a submitted code against the user's secret at the
// current time step, accepting ±1 step of 30 seconds for clock skew.
// A wrong code is (false, nil), not an error. Unknown users yield
// common.ErrorNotFound.
//
// A valid code verifies repeatedly within its window; there is no
// single-use tracking.
func (s *TOTPService) VerifyCode(ctx context.Context, userID int64, code string) (bool, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	valid, err := totp.ValidateCustom(code, user.TOTPSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		// malformed input counts as a failed check, same as a wrong code
		return false, nil
	}

	return valid, nil
}
