package webhook

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}
	v.now = func() time.Time { return now }
	return v
}

func TestVerify(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	ts := strconv.FormatInt(now.Unix(), 10)

	sig, err := Sign(testSecret, "msg_1", now, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	stale := strconv.FormatInt(now.Add(-SignatureTolerance-time.Second).Unix(), 10)
	future := strconv.FormatInt(now.Add(SignatureTolerance+time.Second).Unix(), 10)
	staleSig, _ := Sign(testSecret, "msg_1", now.Add(-SignatureTolerance-time.Second), body)

	tests := []struct {
		name    string
		body    []byte
		id      string
		ts      string
		sig     string
		wantErr error
	}{
		{"valid", body, "msg_1", ts, sig, nil},
		{"multiple signatures", body, "msg_1", ts, "v1,bm9wZQ== " + sig, nil},
		{"missing id", body, "", ts, sig, ErrMissingHeaders},
		{"missing signature", body, "msg_1", ts, "", ErrMissingHeaders},
		{"garbage timestamp", body, "msg_1", "yesterday", sig, ErrInvalidTimestamp},
		{"stale timestamp", body, "msg_1", stale, staleSig, ErrTimestampOutOfRange},
		{"future timestamp", body, "msg_1", future, sig, ErrTimestampOutOfRange},
		{"tampered body", []byte(`{"type":"user.deleted"}`), "msg_1", ts, sig, ErrInvalidSignature},
		{"wrong id", body, "msg_2", ts, sig, ErrInvalidSignature},
		{"tampered signature", body, "msg_1", ts, "v1,AAAA" + sig[7:], ErrInvalidSignature},
	}

	v := newTestVerifier(t, now)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.body, tt.id, tt.ts, tt.sig)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVerifyWithoutSecretFailsClosed(t *testing.T) {
	v, err := NewVerifier("  ")
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}
	if v.Configured() {
		t.Fatal("expected unconfigured verifier")
	}
	if err := v.Verify([]byte("{}"), "msg_1", "1", "v1,x"); !errors.Is(err, ErrSecretNotConfigured) {
		t.Fatalf("expected ErrSecretNotConfigured, got %v", err)
	}
}

func TestNewVerifierRejectsMalformedSecret(t *testing.T) {
	if _, err := NewVerifier("whsec_!!!not-base64!!!"); err == nil {
		t.Fatal("expected error for malformed secret")
	}
}

func TestSignIsKeyedBySecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	body := []byte(`{"type":"user.created"}`)
	v := newTestVerifier(t, now)
	ts := strconv.FormatInt(now.Unix(), 10)

	sig, err := Sign(testSecret, "msg_1", now, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if err := v.Verify(body, "msg_1", ts, sig); err != nil {
		t.Fatalf("expected own signature to verify, got %v", err)
	}

	other, err := Sign("whsec_dGVzdC1vdGhlci1zZWNyZXQtdmFsdWU=", "msg_1", now, body)
	if err != nil {
		t.Fatalf("Sign with other secret failed: %v", err)
	}
	if other == sig {
		t.Fatal("expected different secrets to give different signatures")
	}
	if err := v.Verify(body, "msg_1", ts, other); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	if _, err := Sign("whsec_!!!not-base64!!!", "msg_1", now, body); err == nil {
		t.Fatal("expected error for malformed secret")
	}
}
