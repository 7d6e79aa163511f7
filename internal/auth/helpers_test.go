package auth

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-accounts-api/internal/account"
	"github.com/redmonkez12/go-accounts-api/internal/database/databasetest"
	"github.com/redmonkez12/go-accounts-api/internal/logging"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// cheap parameters keep concurrent signup tests fast
var testArgon2Params = Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 32, SaltLen: 16}

type sentEmail struct {
	Token string
	Email string
	Name  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (n *recordingNotifier) SendVerificationEmail(ctx context.Context, token, toEmail, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{Token: token, Email: toEmail, Name: name})
	return n.err
}

func (n *recordingNotifier) Sent() []sentEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEmail(nil), n.sent...)
}

type memoryAvatars struct {
	mu      sync.Mutex
	saved   map[string][]byte
	types   map[string]string
	deleted []string
}

func newMemoryAvatars() *memoryAvatars {
	return &memoryAvatars{saved: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryAvatars) Save(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[key] = buf.Bytes()
	m.types[key] = contentType
	return "/avatars/" + key, nil
}

func (m *memoryAvatars) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.TrimPrefix(url, "/avatars/")
	delete(m.saved, key)
	delete(m.types, key)
	m.deleted = append(m.deleted, url)
	return nil
}

// countingHasher records how often each side of the hasher is used
type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verifies int
}

func (c *countingHasher) Verify(password, encodedHash string) bool {
	c.mu.Lock()
	c.verifies++
	c.mu.Unlock()
	return c.PasswordHasher.Verify(password, encodedHash)
}

func (c *countingHasher) Verifies() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifies
}

type testEnv struct {
	service  *Service
	accounts *account.Repository
	notifier *recordingNotifier
	avatars  *memoryAvatars
	issuer   TokenService
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	issuer, err := NewPasetoService(testKey)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	env := &testEnv{
		accounts: account.NewRepository(databasetest.NewSQLite(t)),
		notifier: &recordingNotifier{},
		avatars:  newMemoryAvatars(),
		issuer:   issuer,
		logs:     logs,
	}
	env.service = NewService(
		env.accounts,
		NewArgon2Hasher(testArgon2Params),
		NewRandomTokenGenerator(32),
		issuer,
		env.notifier,
		env.avatars,
		logging.New(slog.NewTextHandler(&syncWriter{w: logs}, nil)),
	)
	return env
}

// waitForEmails drains the background dispatches and returns every email sent so far
func (e *testEnv) waitForEmails(t *testing.T) []sentEmail {
	t.Helper()
	require.NoError(t, e.service.Wait(context.Background()))
	return e.notifier.Sent()
}

// signup creates an account and returns the verification token it was mailed
func (e *testEnv) signup(t *testing.T, email, password string) string {
	t.Helper()

	_, err := e.service.Signup(context.Background(), SignupInput{Email: email, Password: password})
	require.NoError(t, err)

	sent := e.waitForEmails(t)
	require.NotEmpty(t, sent)
	last := sent[len(sent)-1]
	require.Equal(t, account.NormalizeEmail(email), last.Email)
	return last.Token
}

// verifiedSession signs up, verifies and logs in
func (e *testEnv) verifiedSession(t *testing.T, email, password string) *Session {
	t.Helper()

	token := e.signup(t, email, password)
	require.NoError(t, e.service.VerifyEmail(context.Background(), token))

	session, err := e.service.Login(context.Background(), email, password)
	require.NoError(t, err)
	return session
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
