package sumsub

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

var (
	testCredentials = Credentials{AppToken: "test-token", SecretKey: "test-secret"}
	fixedTime       = time.Unix(1700000000, 0)
)

func fixedClock() time.Time { return fixedTime }

func TestSignKnownVectors(t *testing.T) {
	signer := NewSigner(testCredentials, WithClock(fixedClock))

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
		want   string
	}{
		{
			name:   "websdk link",
			method: "POST",
			path:   "/resources/sdkIntegrations/levels/basic-kyc-level/websdkLink?externalUserId=u-100",
			want:   "53a11c8400d6416dbc9e78c541dc6f7a39d7d62f4826284abed02274894e16d6",
		},
		{
			name:   "applicant status lowercase method",
			method: "get",
			path:   "/resources/applicants/-;externalUserId=u-100/one",
			want:   "50da3ac4f341037e1e0e41c5a24109e3d15173d72d9892bc94613b17c0fc633b",
		},
		{
			name:   "with body",
			method: "POST",
			path:   "/resources/applicants/int-55/info/idDoc",
			body:   []byte(`{"a":1}`),
			want:   "0a0e1ddfe212c60ab26bed82733aa0490fbfa62644cf1a08216b9000b93c950f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := signer.Sign(tt.method, tt.path, tt.body)
			if sr.Signature != tt.want {
				t.Errorf("Sign() signature = %s, want %s", sr.Signature, tt.want)
			}
			if sr.Method != strings.ToUpper(tt.method) {
				t.Errorf("Sign() method = %s, want %s", sr.Method, strings.ToUpper(tt.method))
			}
		})
	}
}

func TestSignHeaders(t *testing.T) {
	signer := NewSigner(testCredentials, WithClock(fixedClock))
	sr := signer.Sign("POST", "/resources/applicants/int-55/reset", nil)

	want := map[string]string{
		HeaderAccessTs:  "1700000000",
		HeaderAccessSig: sr.Signature,
		HeaderAppToken:  "test-token",
		"Accept":        "*/*",
	}
	if len(sr.Headers) != len(want) {
		t.Errorf("got %d headers, want %d", len(sr.Headers), len(want))
	}
	for name, value := range want {
		if got := sr.Headers.Get(name); got != value {
			t.Errorf("header %s = %q, want %q", name, got, value)
		}
	}
	if sr.Timestamp != fixedTime.Unix() {
		t.Errorf("Timestamp = %d, want %d", sr.Timestamp, fixedTime.Unix())
	}
}

func TestSignatureIsLowercaseHex(t *testing.T) {
	signers := []*Signer{
		NewSigner(testCredentials),
		NewSigner(Credentials{}), // empty secret still produces a well formed signature
	}

	for i, signer := range signers {
		for _, body := range [][]byte{nil, []byte("x"), bytes.Repeat([]byte("y"), 4096)} {
			sig := signer.Sign("GET", "/resources/applicants/a/one", body).Headers.Get(HeaderAccessSig)
			if len(sig) != 64 {
				t.Errorf("signer %d: signature has %d characters, expected 64", i, len(sig))
			}
			for _, c := range sig {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("signer %d: signature has non-hex character: %c", i, c)
				}
			}
		}
	}
}

func TestSignatureChangesWithInputs(t *testing.T) {
	signer := NewSigner(testCredentials, WithClock(fixedClock))

	base := signer.Sign("POST", "/resources/applicants/a/reset", []byte("body")).Signature

	variants := map[string]string{
		"method": signer.Sign("GET", "/resources/applicants/a/reset", []byte("body")).Signature,
		"path":   signer.Sign("POST", "/resources/applicants/b/reset", []byte("body")).Signature,
		"body":   signer.Sign("POST", "/resources/applicants/a/reset", []byte("other")).Signature,
		"nobody": signer.Sign("POST", "/resources/applicants/a/reset", nil).Signature,
	}
	for name, sig := range variants {
		if sig == base {
			t.Errorf("changing %s did not change the signature", name)
		}
	}

	// same inputs one second later
	later := NewSigner(testCredentials, WithClock(func() time.Time { return fixedTime.Add(time.Second) }))
	if later.Sign("POST", "/resources/applicants/a/reset", []byte("body")).Signature == base {
		t.Error("signatures with different timestamps should differ")
	}

	// and the same inputs again produce the same signature
	if signer.Sign("POST", "/resources/applicants/a/reset", []byte("body")).Signature != base {
		t.Error("signature is not deterministic for a fixed timestamp")
	}
}

func TestVerifySignature(t *testing.T) {
	signer := NewSigner(testCredentials, WithClock(fixedClock))
	sr := signer.Sign("POST", "/resources/applicants/a/reset", nil)

	if !VerifySignature("test-secret", sr.Timestamp, "post", sr.Path, nil, sr.Signature) {
		t.Error("VerifySignature() = false for a valid signature")
	}
	if VerifySignature("wrong-secret", sr.Timestamp, "POST", sr.Path, nil, sr.Signature) {
		t.Error("VerifySignature() = true with the wrong secret")
	}
	if VerifySignature("test-secret", sr.Timestamp+1, "POST", sr.Path, nil, sr.Signature) {
		t.Error("VerifySignature() = true with the wrong timestamp")
	}
}

func TestCredentialsAreRedacted(t *testing.T) {
	rendered := []string{
		fmt.Sprintf("%v", testCredentials),
		fmt.Sprintf("%s", testCredentials),
		testCredentials.LogValue().String(),
	}

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("creds", slog.Any("credentials", testCredentials))
	rendered = append(rendered, buf.String())

	for _, r := range rendered {
		if strings.Contains(r, "test-secret") || strings.Contains(r, "test-token") {
			t.Errorf("credentials leaked: %s", r)
		}
	}
}
