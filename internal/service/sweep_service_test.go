package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docnotify/docnotify-api/internal/models"
	"github.com/docnotify/docnotify-api/pkg/mailer"
)

var sweepNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

type stubUserSource struct {
	users []models.User
	err   error
}

func (s *stubUserSource) ListPage(_ context.Context, afterID string, limit int) ([]models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	var page []models.User
	for _, u := range s.users {
		if u.ID > afterID {
			page = append(page, u)
			if len(page) == limit {
				break
			}
		}
	}
	return page, nil
}

type stubDocSource struct {
	docs map[string][]models.Document
	errs map[string]error
}

func (s *stubDocSource) ListReminderEnabled(_ context.Context, userID string) ([]models.Document, error) {
	if err := s.errs[userID]; err != nil {
		return nil, err
	}
	return s.docs[userID], nil
}

type stubLedger struct {
	sent     map[string]bool
	readErr  error
	writeErr error
	recorded []models.NotificationLog
}

func ledgerKey(documentID, kind, windowID string) string {
	return documentID + "|" + kind + "|" + windowID
}

func (s *stubLedger) WasSent(_ context.Context, documentID, kind, windowID string) (bool, error) {
	if s.readErr != nil {
		return false, s.readErr
	}
	return s.sent[ledgerKey(documentID, kind, windowID)], nil
}

func (s *stubLedger) RecordSent(_ context.Context, entry *models.NotificationLog) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.recorded = append(s.recorded, *entry)
	return nil
}

type stubLocker struct {
	contended  bool
	acquireErr error
	released   bool
}

func (s *stubLocker) Acquire(_ context.Context) (string, bool, error) {
	if s.acquireErr != nil {
		return "", false, s.acquireErr
	}
	if s.contended {
		return "", false, nil
	}
	return "lock-token", true, nil
}

func (s *stubLocker) Release(_ context.Context, token string) error {
	s.released = token == "lock-token"
	return nil
}

type sentMail struct {
	to      string
	replyTo string
	subject string
	text    string
	html    string
}

type stubTransport struct {
	sent    []sentMail
	failFor map[string]error
	closed  bool
}

func (t *stubTransport) Send(msg mailer.Message) (string, error) {
	if err := t.failFor[msg.To]; err != nil {
		return "", err
	}
	t.sent = append(t.sent, sentMail{to: msg.To, replyTo: msg.ReplyTo, subject: msg.Subject, text: msg.Text, html: msg.HTML})
	return fmt.Sprintf("<msg-%d@test>", len(t.sent)), nil
}

func (t *stubTransport) Close() error {
	t.closed = true
	return nil
}

type stubDialer struct {
	transport *stubTransport
	err       error
	dialed    bool
}

func (d *stubDialer) Dial() (mailer.Transport, error) {
	d.dialed = true
	if d.err != nil {
		return nil, d.err
	}
	return d.transport, nil
}

type sweepFixture struct {
	svc       *SweepService
	users     *stubUserSource
	docs      *stubDocSource
	ledger    *stubLedger
	locker    *stubLocker
	dialer    *stubDialer
	transport *stubTransport
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	f := &sweepFixture{
		users:     &stubUserSource{},
		docs:      &stubDocSource{docs: map[string][]models.Document{}, errs: map[string]error{}},
		ledger:    &stubLedger{sent: map[string]bool{}},
		locker:    &stubLocker{},
		transport: &stubTransport{failFor: map[string]error{}},
	}
	f.dialer = &stubDialer{transport: f.transport}

	f.svc = NewSweepService(SweepServiceParams{
		Users:        f.users,
		Documents:    f.docs,
		Ledger:       f.ledger,
		Locker:       f.locker,
		Dialer:       f.dialer,
		Classifier:   NewExpiryClassifier(30),
		Email:        NewNoticeEmailBuilder("https://app.example.com/dashboard"),
		PageSize:     50,
		DedupEnabled: true,
	})
	f.svc.now = func() time.Time { return sweepNow }
	return f
}

func TestSweepHappyPath(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{
		{ID: "u1", Email: "a@example.com", Name: "Alice"},
		{ID: "u2", Email: "b@example.com", Name: "Bob"},
		{ID: "u3", Email: "c@example.com", Name: "Cara"},
	}
	f.docs.docs["u1"] = []models.Document{expiryDoc("d1", "2026-09-10"), expiryDoc("d2", "2026-08-20")}
	f.docs.docs["u2"] = []models.Document{expiryDoc("d3", "2026-09-05")}
	// u3 has nothing in the window.
	f.docs.docs["u3"] = []models.Document{expiryDoc("d4", "2027-01-01")}

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ProcessedUsers)
	assert.Equal(t, 2, result.EmailsSent)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Processed 3 users, sent 2 emails", result.Message)
	assert.True(t, f.transport.closed)
	assert.True(t, f.locker.released)

	require.Len(t, f.transport.sent, 2)
	assert.Equal(t, "Document Expiration Notice - 2 documents", f.transport.sent[0].subject)
	assert.Equal(t, "Document Expiration Notice - 1 document", f.transport.sent[1].subject)
	assert.Contains(t, f.transport.sent[0].html, "Expired")
	assert.Contains(t, f.transport.sent[0].text, "Doc d1")

	// Both of Alice's notices plus Bob's land in the ledger.
	assert.Len(t, f.ledger.recorded, 3)
}

func TestSweepCountsUsersWithoutEmail(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{
		{ID: "u1", Email: "", Name: "No Email"},
		{ID: "u2", Email: "b@example.com", Name: "Bob"},
	}
	f.docs.docs["u2"] = []models.Document{expiryDoc("d1", "2026-09-05")}

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ProcessedUsers)
	assert.Equal(t, 1, result.EmailsSent)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestSweepRecoversPerUserErrors(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{
		{ID: "u1", Email: "a@example.com", Name: "Alice"},
		{ID: "u2", Email: "b@example.com", Name: "Bob"},
		{ID: "u3", Email: "c@example.com", Name: "Cara"},
	}
	f.docs.errs["u1"] = fmt.Errorf("query timeout")
	f.docs.docs["u2"] = []models.Document{expiryDoc("d1", "2026-09-05")}
	f.docs.docs["u3"] = []models.Document{expiryDoc("d2", "2026-09-06")}
	f.transport.failFor["c@example.com"] = fmt.Errorf("mailbox full")

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ProcessedUsers)
	assert.Equal(t, 1, result.EmailsSent)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "Error processing user a@example.com: query timeout", result.Errors[0])
	assert.Equal(t, "Error processing user c@example.com: mailbox full", result.Errors[1])
}

func TestSweepFailsWhenTransportUnverified(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com"}}
	f.dialer.err = fmt.Errorf("smtp auth rejected")

	result := f.svc.Run(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.ProcessedUsers)
	assert.Equal(t, 0, result.EmailsSent)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Email transport verification failed")
	assert.Contains(t, result.Message, "Email transport verification failed")
	assert.True(t, f.locker.released)
}

func TestSweepFailsWhenUserListFails(t *testing.T) {
	f := newSweepFixture(t)
	f.users.err = fmt.Errorf("connection refused")

	result := f.svc.Run(context.Background())

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Failed to list users")
	require.Len(t, result.Errors, 1)
}

func TestSweepSkipsWhenLockContended(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com"}}
	f.locker.contended = true

	result := f.svc.Run(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, "Expiration sweep already running", result.Message)
	assert.Equal(t, 0, result.ProcessedUsers)
	assert.False(t, f.dialer.dialed)
}

func TestSweepDeduplicatesNotices(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com", Name: "Alice"}}
	f.docs.docs["u1"] = []models.Document{expiryDoc("d1", "2026-09-10"), expiryDoc("d2", "2026-09-12")}
	f.ledger.sent[ledgerKey("d1", models.NotificationKindExpiryWarning, "2026-09-10")] = true

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.EmailsSent)
	require.Len(t, f.transport.sent, 1)
	assert.Equal(t, "Document Expiration Notice - 1 document", f.transport.sent[0].subject)
	require.Len(t, f.ledger.recorded, 1)
	assert.Equal(t, "d2", f.ledger.recorded[0].DocumentID)
}

func TestSweepSkipsUserWhenAllNoticesDeduplicated(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com", Name: "Alice"}}
	f.docs.docs["u1"] = []models.Document{expiryDoc("d1", "2026-09-10")}
	f.ledger.sent[ledgerKey("d1", models.NotificationKindExpiryWarning, "2026-09-10")] = true

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.EmailsSent)
	assert.Empty(t, f.transport.sent)
}

func TestSweepFailsOpenOnLedgerReadError(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com", Name: "Alice"}}
	f.docs.docs["u1"] = []models.Document{expiryDoc("d1", "2026-09-10")}
	f.ledger.readErr = fmt.Errorf("redis down")

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.EmailsSent)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestSweepIgnoresLedgerWriteFailureAfterSend(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com", Name: "Alice"}}
	f.docs.docs["u1"] = []models.Document{expiryDoc("d1", "2026-09-10")}
	f.ledger.writeErr = fmt.Errorf("unique violation")

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.EmailsSent)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestSweepSkipsMalformedExpiryDates(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com", Name: "Alice"}}
	f.docs.docs["u1"] = []models.Document{expiryDoc("d1", "garbage"), expiryDoc("d2", "")}

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ProcessedUsers)
	assert.Equal(t, 0, result.EmailsSent)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestSweepWalksAllPages(t *testing.T) {
	f := newSweepFixture(t)
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("u%d", i)
		f.users.users = append(f.users.users, models.User{ID: id, Email: id + "@example.com"})
		f.docs.docs[id] = []models.Document{expiryDoc("d-"+id, "2026-09-10")}
	}
	f.svc.pageSize = 3

	result := f.svc.Run(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, 7, result.ProcessedUsers)
	assert.Equal(t, 7, result.EmailsSent)
}

func TestSweepAbortsOnContextCancel(t *testing.T) {
	f := newSweepFixture(t)
	f.users.users = []models.User{{ID: "u1", Email: "a@example.com"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.svc.Run(ctx)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Sweep aborted")
	assert.Equal(t, 0, result.EmailsSent)
	assert.True(t, f.locker.released)
}
