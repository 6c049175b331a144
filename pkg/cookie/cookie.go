package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
)

// LimitBytes is the serialized size most browsers accept for a single cookie.
// Anything above it is silently truncated or dropped client-side, so callers
// should treat oversized cookies as an application error.
const LimitBytes = 4093

// Errors.
var (
	ErrNotFound = errors.New("cookie: not found")
	ErrNoKeys   = errors.New("cookie: signing keys required")
	ErrBadSig   = errors.New("cookie: invalid signature")
	ErrDecrypt  = errors.New("cookie: decryption failed")
)

// Manager handles cookie operations. Signed and encrypted operations use an
// ordered key list: the first key signs and encrypts, every key verifies and
// decrypts, so keys can be rotated without invalidating live cookies.
type Manager struct {
	keys     [][]byte // nil = plain cookies only
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithKeys sets the ordered signing secrets. Empty keys are skipped.
func WithKeys(keys []string) Option {
	return func(m *Manager) {
		for _, k := range keys {
			if k != "" {
				m.keys = append(m.keys, []byte(k))
			}
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		m.path = path
	}
}

// WithSecure sets the Secure flag.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Oversized reports whether the serialized name=value pair exceeds LimitBytes.
func (m *Manager) Oversized(name, value string) bool {
	return len(name)+1+len(value) > LimitBytes
}

// Get returns a plain cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set sets a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete removes a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// GetSigned returns a signed cookie value.
// The signature is checked against every configured key, newest first.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if len(m.keys) == 0 {
		return "", ErrNoKeys
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	// Format: base64(value).base64(signature)
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 {
		return "", ErrBadSig
	}

	value, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrBadSig
	}

	for _, key := range m.keys {
		mac := hmac.New(sha256.New, key)
		mac.Write(value)
		if hmac.Equal(sig, mac.Sum(nil)) {
			return string(value), nil
		}
	}
	return "", ErrBadSig
}

// SetSigned sets a cookie signed with the primary (first) key.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if len(m.keys) == 0 {
		return ErrNoKeys
	}

	mac := hmac.New(sha256.New, m.keys[0])
	mac.Write([]byte(value))
	sig := mac.Sum(nil)

	encoded := base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(sig)

	http.SetCookie(w, m.cookie(name, encoded, maxAge))
	return nil
}

// GetEncrypted returns an encrypted cookie value.
// Decryption is attempted with every configured key, newest first.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if len(m.keys) == 0 {
		return "", ErrNoKeys
	}

	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}

	for _, key := range m.keys {
		if plaintext, err := decrypt(key, data); err == nil {
			return string(plaintext), nil
		}
	}
	return "", ErrDecrypt
}

// SetEncrypted sets a cookie encrypted with the primary (first) key.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if len(m.keys) == 0 {
		return ErrNoKeys
	}

	ciphertext, err := encrypt(m.keys[0], []byte(value))
	if err != nil {
		return err
	}

	http.SetCookie(w, m.cookie(name, base64.RawURLEncoding.EncodeToString(ciphertext), maxAge))
	return nil
}

// cookie creates a cookie with the manager's defaults.
func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

// encrypt uses AES-GCM with a key derived from the secret.
func encrypt(secret, plaintext []byte) ([]byte, error) {
	key := sha256.Sum256(secret)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt uses AES-GCM with a key derived from the secret.
func decrypt(secret, ciphertext []byte) ([]byte, error) {
	key := sha256.Sum256(secret)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrDecrypt
	}
	nonce, data := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	return aead.Open(nil, nonce, data, nil)
}
