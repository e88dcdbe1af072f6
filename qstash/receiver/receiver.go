// Package receiver verifies requests delivered by QStash.
//
// Every delivery carries an Upstash-Signature header: an HS256 JWT signed
// with the current signing key whose claims bind the destination URL and a
// SHA-256 digest of the body. During key rotation the next key is accepted
// as well.
package receiver

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// SignatureHeader carries the delivery signature.
const SignatureHeader = "Upstash-Signature"

const issuer = "Upstash"

var (
	// ErrMissingSignature is returned when a request has no signature.
	ErrMissingSignature = errors.New("missing signature")
	// ErrInvalidSignature is returned when no signing key accepts the signature.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrBodyMismatch is returned when the signed digest does not match the body.
	ErrBodyMismatch = errors.New("body hash does not match")
	// ErrNoSigningKeys is returned by New when both keys are empty.
	ErrNoSigningKeys = errors.New("no signing keys configured")
)

// Receiver verifies delivery signatures. It is safe for concurrent use.
type Receiver struct {
	currentKey string
	nextKey    string
}

// New creates a Receiver. Either key may be empty, but not both.
func New(currentSigningKey, nextSigningKey string) (*Receiver, error) {
	if currentSigningKey == "" && nextSigningKey == "" {
		return nil, ErrNoSigningKeys
	}
	return &Receiver{currentKey: currentSigningKey, nextKey: nextSigningKey}, nil
}

// VerifyRequest describes one delivery to check.
type VerifyRequest struct {
	// Signature is the value of the Upstash-Signature header.
	Signature string
	// Body is the raw request body.
	Body []byte
	// URL, when set, must equal the subject of the token.
	URL string
	// ClockTolerance is the leeway applied to exp and nbf.
	ClockTolerance time.Duration
}

// Verify checks req against the current key and then the next key.
func (r *Receiver) Verify(req VerifyRequest) error {
	if req.Signature == "" {
		return ErrMissingSignature
	}

	var errs []error
	for _, key := range []string{r.currentKey, r.nextKey} {
		if key == "" {
			continue
		}
		err := verifyWithKey(key, req)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrBodyMismatch) {
			return err
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidSignature, errors.Join(errs...))
}

func verifyWithKey(key string, req VerifyRequest) error {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithLeeway(req.ClockTolerance),
		jwtlib.WithExpirationRequired(),
	}
	if req.URL != "" {
		opts = append(opts, jwtlib.WithSubject(req.URL))
	}

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(req.Signature, claims, func(*jwtlib.Token) (any, error) {
		return []byte(key), nil
	}, opts...)
	if err != nil {
		return err
	}

	signed, _ := claims["body"].(string)
	if strings.TrimRight(signed, "=") != BodyHash(req.Body) {
		return ErrBodyMismatch
	}
	return nil
}

// BodyHash returns the unpadded base64url SHA-256 digest of body, the form
// carried in the body claim.
func BodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
