package notifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/cosmos-provisioner/internal/domain"
	"go.uber.org/zap"
)

type fakeSender struct {
	sendFn func(ctx context.Context, subject string, body string) error
	calls  []string
}

func (f *fakeSender) Send(ctx context.Context, subject string, body string) error {
	f.calls = append(f.calls, subject)
	if f.sendFn != nil {
		return f.sendFn(ctx, subject, body)
	}
	return nil
}

func TestNotifierCreateSucceeded(t *testing.T) {
	t.Parallel()

	var gotSubject, gotBody string
	sender := &fakeSender{
		sendFn: func(ctx context.Context, subject string, body string) error {
			gotSubject = subject
			gotBody = body
			return nil
		},
	}

	n := New(sender, "sub-id", "rg-name", zap.NewNop())
	n.now = func() time.Time { return time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC) }

	n.CreateSucceeded(context.Background(), domain.AccountRequest{
		Name:     "my-cosmos-account",
		Location: "Central India",
		APIKind:  domain.APIKindSQL,
	})

	if !strings.Contains(gotSubject, "Ready") {
		t.Fatalf("subject = %q, want it to contain Ready", gotSubject)
	}
	if !strings.Contains(gotSubject, "my-cosmos-account") {
		t.Fatalf("subject = %q, want account name", gotSubject)
	}
	if !strings.Contains(gotBody, "my-cosmos-account") {
		t.Fatal("body should contain the account name")
	}
	if !strings.Contains(gotBody, "Central India") || !strings.Contains(gotBody, "sql") {
		t.Fatal("body should contain location and api type")
	}
	if !strings.Contains(gotBody, "subscriptions/sub-id/resourceGroups/rg-name") {
		t.Fatal("body should contain the portal link")
	}
	if !strings.Contains(gotBody, "2026-08-26 10:30 UTC") {
		t.Fatalf("body = %q, want provisioning time", gotBody)
	}
}

func TestNotifierFailureMessages(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	n := New(sender, "sub", "rg", zap.NewNop())

	n.CreateFailed(context.Background(), "acc", "quota exceeded")
	n.DeleteSucceeded(context.Background(), "acc")
	n.DeleteFailed(context.Background(), "acc", "locked")

	if len(sender.calls) != 3 {
		t.Fatalf("sends = %d, want 3", len(sender.calls))
	}
	if !strings.Contains(sender.calls[0], "Provisioning failed for acc") {
		t.Fatalf("create failure subject = %q", sender.calls[0])
	}
	if !strings.Contains(sender.calls[1], "Deleted: acc") {
		t.Fatalf("delete success subject = %q", sender.calls[1])
	}
	if !strings.Contains(sender.calls[2], "Deletion Failed: acc") {
		t.Fatalf("delete failure subject = %q", sender.calls[2])
	}
}

func TestNotifierSwallowsTransportErrors(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{
		sendFn: func(ctx context.Context, subject string, body string) error {
			return errors.New("connection refused")
		},
	}
	n := New(sender, "sub", "rg", zap.NewNop())

	// Must not panic or propagate.
	n.CreateFailed(context.Background(), "acc", "boom")
	n.DeleteFailed(context.Background(), "acc", "boom")

	if len(sender.calls) != 2 {
		t.Fatalf("sends = %d, want 2 attempts", len(sender.calls))
	}
}

func TestWebhookSenderSend(t *testing.T) {
	t.Parallel()

	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender, err := NewWebhookSender(server.URL)
	if err != nil {
		t.Fatalf("NewWebhookSender() error = %v", err)
	}

	if err := sender.Send(context.Background(), "subject-1", "body-1"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !strings.Contains(gotBody, "subject-1") || !strings.Contains(gotBody, "body-1") {
		t.Fatalf("webhook payload = %q, want subject and body", gotBody)
	}
}

func TestWebhookSenderNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender, err := NewWebhookSender(server.URL)
	if err != nil {
		t.Fatalf("NewWebhookSender() error = %v", err)
	}

	if err := sender.Send(context.Background(), "s", "b"); err == nil {
		t.Fatal("Send() should fail on 502")
	}
}

func TestNewWebhookSenderValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewWebhookSender(""); err == nil {
		t.Fatal("empty endpoint should be rejected")
	}
	if _, err := NewWebhookSender("not a url"); err == nil {
		t.Fatal("malformed endpoint should be rejected")
	}
	if _, err := NewWebhookSenderWithClient("https://example.com/hook", nil); err == nil {
		t.Fatal("nil client should be rejected")
	}
	if _, err := NewWebhookSenderWithClient("https://example.com/hook", resty.New()); err != nil {
		t.Fatalf("valid inputs should pass, got %v", err)
	}
}
