package bondkeeper

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const linkKeyFile = "bondkeeper_link.key" // Self Link Signing Key File Name

var (
	// ErrLinkInvalid is returned when a self check-in token is malformed or
	// its signature does not verify.
	ErrLinkInvalid = errors.New("self check-in link is invalid")
	// ErrLinkExpired is returned when a self check-in token has passed its
	// lifetime.
	ErrLinkExpired = errors.New("self check-in link has expired")
)

// WithSelfLinkKey will configure the HMAC key used to sign self check-in
// links based on the app.ConfigDir. A missing key is generated and persisted
// so links survive restarts. Requires WithConfigDir to be applied first.
func WithSelfLinkKey() func(*App) error {
	return func(app *App) error {
		if app.ConfigDir == "" {
			return errors.New("app has no config dir")
		}
		keyPath := path.Join(app.ConfigDir, linkKeyFile)
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Println("[*] Link key does not exist, creating a new one")
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				return fmt.Errorf("generating link key : %w", err)
			}
			if err := os.WriteFile(keyPath, key, 0600); err != nil {
				return fmt.Errorf("saving link key to disk: %w", err)
			}
			app.linkSecret = key
			return nil
		}
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return fmt.Errorf("loading link key from disk: %w", err)
		}
		if len(key) < 32 {
			return fmt.Errorf("link key at %s is too short", keyPath)
		}
		app.linkSecret = key
		return nil
	}
}

// linkTTL returns the configured lifetime of a self check-in link, falling
// back to seven days when no configuration is loaded.
func (app *App) linkTTL() time.Duration {
	if app.Config != nil && app.Config.SelfLinkTTLHours > 0 {
		return time.Duration(app.Config.SelfLinkTTLHours) * time.Hour
	}
	return 7 * 24 * time.Hour
}

// signLinkPayload computes the base64url HMAC-SHA256 signature of a payload.
func (app *App) signLinkPayload(payload string) string {
	mac := hmac.New(sha256.New, app.linkSecret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// IssueSelfLink creates a signed token a defendant can use to check in
// without an account. The token binds the active tenant, the person and the
// issue time; it stops verifying after the configured lifetime.
func (app *App) IssueSelfLink(personID uuid.UUID) (string, error) {
	return app.issueSelfLinkAt(personID, time.Now())
}

// issueSelfLinkAt is IssueSelfLink with an explicit issue time.
func (app *App) issueSelfLinkAt(personID uuid.UUID, issuedAt time.Time) (string, error) {
	if len(app.linkSecret) == 0 {
		return "", errors.New("app has no link key")
	}
	tenantID, err := app.tenantID()
	if err != nil {
		return "", err
	}
	payload := fmt.Sprintf("%s:%s:%d", tenantID, personID, issuedAt.Unix())
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + app.signLinkPayload(payload), nil
}

// VerifySelfLink checks a token's signature and lifetime and returns the
// tenant and person it was issued for.
func (app *App) VerifySelfLink(token string) (tenantID uuid.UUID, personID uuid.UUID, err error) {
	return app.verifySelfLinkAt(token, time.Now())
}

// verifySelfLinkAt is VerifySelfLink with an explicit verification time.
func (app *App) verifySelfLinkAt(token string, now time.Time) (uuid.UUID, uuid.UUID, error) {
	if len(app.linkSecret) == 0 {
		return uuid.Nil, uuid.Nil, errors.New("app has no link key")
	}
	encoded, signature, found := strings.Cut(token, ".")
	if !found {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}
	payloadBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}
	payload := string(payloadBytes)
	if !hmac.Equal([]byte(signature), []byte(app.signLinkPayload(payload))) {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}

	parts := strings.Split(payload, ":")
	if len(parts) != 3 {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}
	tenantID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}
	personID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}
	issuedUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}
	issuedAt := time.Unix(issuedUnix, 0)
	if issuedAt.After(now) {
		return uuid.Nil, uuid.Nil, ErrLinkInvalid
	}
	if now.Sub(issuedAt) > app.linkTTL() {
		return uuid.Nil, uuid.Nil, ErrLinkExpired
	}
	return tenantID, personID, nil
}

// BuildSelfCheckInURL turns a token into the absolute URL handed to the
// defendant, built against the configured public base URL.
func (app *App) BuildSelfCheckInURL(token string) (string, error) {
	if app.Config == nil || app.Config.PublicBaseURL == "" {
		return "", errors.New("app has no public base url configured")
	}
	base, err := url.Parse(app.Config.PublicBaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing public base url : %w", err)
	}
	return base.JoinPath("checkin", token).String(), nil
}
