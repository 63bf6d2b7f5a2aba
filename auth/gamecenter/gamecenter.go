// Package gamecenter verifies Apple Game Center identity assertions.
//
// A client proves a player identity by sending the signature Game Center
// produced over the player id, bundle id, timestamp and salt, together with
// the URL of Apple's signing certificate. Verification is stateless apart
// from a cache of downloaded certificates.
package gamecenter

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.appointy.com/autoschema/jerrors"
	"golang.org/x/net/context/ctxhttp"
	"google.golang.org/grpc/codes"
)

// AuthData is the assertion sent by the client.
type AuthData struct {
	ID           string `json:"id"`
	PublicKeyURL string `json:"publicKeyUrl"`
	Timestamp    uint64 `json:"timestamp"`
	Signature    string `json:"signature"`
	Salt         string `json:"salt"`
	BundleID     string `json:"bundleId"`
}

// IsAppleURL accepts https URLs on apple.com and its subdomains.
func IsAppleURL(u *url.URL) bool {
	if u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	return host == "apple.com" || strings.HasSuffix(host, ".apple.com")
}

type cachedCert struct {
	key     *rsa.PublicKey
	expires time.Time
}

// Verifier checks assertions. It is safe for concurrent use.
type Verifier struct {
	client   *http.Client
	log      logr.Logger
	allowURL func(*url.URL) bool
	now      func() time.Time

	mu    sync.Mutex
	certs map[string]cachedCert
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithHTTPClient sets the client certificates are fetched with.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) { v.client = c }
}

// WithURLCheck replaces IsAppleURL as the public key URL check.
func WithURLCheck(f func(*url.URL) bool) Option {
	return func(v *Verifier) { v.allowURL = f }
}

// WithClock sets the time source of the certificate cache.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier returns a Verifier logging to log.
func NewVerifier(log logr.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		client:   http.DefaultClient,
		log:      log,
		allowURL: IsAppleURL,
		now:      time.Now,
		certs:    make(map[string]cachedCert),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func notFound(format string, args ...interface{}) error {
	return jerrors.NewDataError(codes.NotFound, "Apple Game Center - "+format, args...)
}

// Verify checks that auth carries a valid signature by Apple's certificate.
// Every failure is a *jerrors.DataError with code NotFound.
func (v *Verifier) Verify(ctx context.Context, auth AuthData) error {
	if auth.ID == "" {
		return notFound("id is required")
	}

	u, err := url.Parse(auth.PublicKeyURL)
	if err != nil || !v.allowURL(u) {
		return notFound("invalid publicKeyUrl: %s", auth.PublicKeyURL)
	}

	signature, err := base64.StdEncoding.DecodeString(auth.Signature)
	if err != nil {
		return notFound("invalid signature")
	}
	salt, err := base64.StdEncoding.DecodeString(auth.Salt)
	if err != nil {
		return notFound("invalid salt")
	}

	key, err := v.publicKey(ctx, auth.PublicKeyURL)
	if err != nil {
		return err
	}

	digest := sha256.Sum256(payload(auth, salt))
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], signature); err != nil {
		return notFound("invalid signature")
	}
	return nil
}

// payload is the signed message: player id, bundle id, the big endian
// timestamp and the salt.
func payload(auth AuthData, salt []byte) []byte {
	buf := make([]byte, 0, len(auth.ID)+len(auth.BundleID)+8+len(salt))
	buf = append(buf, auth.ID...)
	buf = append(buf, auth.BundleID...)
	buf = binary.BigEndian.AppendUint64(buf, auth.Timestamp)
	return append(buf, salt...)
}

func (v *Verifier) publicKey(ctx context.Context, rawURL string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	cached, ok := v.certs[rawURL]
	v.mu.Unlock()
	if ok && v.now().Before(cached.expires) {
		return cached.key, nil
	}

	resp, err := ctxhttp.Get(ctx, v.client, rawURL)
	if err != nil {
		return nil, jerrors.WrapDataError(codes.NotFound, err, "Apple Game Center - unable to fetch certificate")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, notFound("unable to fetch certificate: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCertificateSize+1))
	if err != nil {
		return nil, jerrors.WrapDataError(codes.NotFound, err, "Apple Game Center - unable to read certificate")
	}
	if len(body) > maxCertificateSize {
		return nil, notFound("certificate too large")
	}
	key, err := parseKey(body)
	if err != nil {
		return nil, jerrors.WrapDataError(codes.NotFound, err, "Apple Game Center - invalid certificate")
	}

	if maxAge := maxAge(resp.Header.Get("Cache-Control")); maxAge > 0 {
		v.mu.Lock()
		v.certs[rawURL] = cachedCert{key: key, expires: v.now().Add(maxAge)}
		v.mu.Unlock()
	}
	v.log.V(1).Info("fetched game center certificate", "url", rawURL)
	return key, nil
}

// maxCertificateSize bounds the certificate response body.
const maxCertificateSize = 64 << 10

// parseKey reads the RSA key of a DER or PEM encoded certificate.
func parseKey(data []byte) (*rsa.PublicKey, error) {
	if block, _ := pem.Decode(data); block != nil {
		data = block.Bytes
	}
	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, err
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate key is %T, not RSA", cert.PublicKey)
	}
	return key, nil
}

// maxAge returns the max-age directive of a Cache-Control header, or 0.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(directive), "=")
		if !found || !strings.EqualFold(name, "max-age") {
			continue
		}
		secs, err := strconv.Atoi(strings.Trim(value, `"`))
		if err != nil || secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	return 0
}
