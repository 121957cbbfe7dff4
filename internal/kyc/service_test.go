package kyc

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/information-sharing-networks/kyc-demo/internal/sumsub"
)

const testLevel = "basic-kyc-level"

var testCredentials = sumsub.Credentials{AppToken: "test-token", SecretKey: "test-secret"}

// fakeSumsub is a test Sumsub API that records the calls it receives and verifies their signatures
type fakeSumsub struct {
	t *testing.T

	mu    sync.Mutex
	calls []string

	// responses by step; a missing entry means 200 with the default body
	status map[string]fakeResponse
}

type fakeResponse struct {
	code int
	body string
}

func newFakeSumsub(t *testing.T, overrides map[string]fakeResponse) (*fakeSumsub, *sumsub.Client) {
	t.Helper()
	f := &fakeSumsub{t: t, status: overrides}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, sumsub.NewClient(srv.URL, sumsub.NewSigner(testCredentials))
}

func (f *fakeSumsub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ts, _ := strconv.ParseInt(r.Header.Get(sumsub.HeaderAccessTs), 10, 64)
	if !sumsub.VerifySignature(testCredentials.SecretKey, ts, r.Method, r.RequestURI, nil, r.Header.Get(sumsub.HeaderAccessSig)) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"description":"Request signature mismatch","code":401}`))
		return
	}

	var step string
	var def fakeResponse
	switch {
	case r.Method == http.MethodGet && r.RequestURI == "/resources/applicants/-;externalUserId=u-100/one":
		step = StepStatus
		def = fakeResponse{200, `{"id":"int-55","externalUserId":"u-100","review":{"reviewStatus":"completed"}}`}
	case r.Method == http.MethodPost && r.RequestURI == "/resources/applicants/int-55/reset":
		step = StepReset
		def = fakeResponse{200, `{"ok":1}`}
	case r.Method == http.MethodPost && r.RequestURI == "/resources/sdkIntegrations/levels/basic-kyc-level/websdkLink?externalUserId=u-100":
		step = StepLink
		def = fakeResponse{200, `{"url":"https://verify.example/u-100"}`}
	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.RequestURI)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, step)
	f.mu.Unlock()

	resp := def
	if o, ok := f.status[step]; ok {
		resp = o
	}
	w.WriteHeader(resp.code)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeSumsub) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recordingReporter keeps the reported failures
type recordingReporter struct {
	mu        sync.Mutex
	failures  []Failure
	successes []string
}

func (r *recordingReporter) Report(_ context.Context, f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

func (r *recordingReporter) Succeeded(_ context.Context, workflow string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, workflow)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func equalSteps(a, b []string) bool {
	return strings.Join(a, ",") == strings.Join(b, ",")
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]fakeResponse
		wantURL   string
		wantOK    bool
		wantKind  sumsub.ErrorKind
	}{
		{
			name:    "success",
			wantURL: "https://verify.example/u-100",
			wantOK:  true,
		},
		{
			name:      "remote rejection",
			overrides: map[string]fakeResponse{StepLink: {400, `{"description":"level not found","code":400}`}},
			wantKind:  sumsub.ErrKindRemoteRejection,
		},
		{
			name:      "unparseable error body",
			overrides: map[string]fakeResponse{StepLink: {503, `Service Unavailable`}},
			wantKind:  sumsub.ErrKindProtocol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, client := newFakeSumsub(t, tt.overrides)
			reporter := &recordingReporter{}
			svc := NewService(client, testLevel, reporter, discardLogger())

			url, ok := svc.Generate(context.Background(), "u-100")
			if ok != tt.wantOK || url != tt.wantURL {
				t.Errorf("Generate() = (%q, %v), want (%q, %v)", url, ok, tt.wantURL, tt.wantOK)
			}

			if calls := fake.recorded(); !equalSteps(calls, []string{StepLink}) {
				t.Errorf("calls = %v, want exactly one link call", calls)
			}

			if tt.wantOK {
				if len(reporter.failures) != 0 || len(reporter.successes) != 1 {
					t.Errorf("unexpected reports: failures %v successes %v", reporter.failures, reporter.successes)
				}
				return
			}
			if len(reporter.failures) != 1 {
				t.Fatalf("got %d failure reports, want 1", len(reporter.failures))
			}
			f := reporter.failures[0]
			if f.Workflow != WorkflowGenerate || f.Step != StepLink || f.Kind() != tt.wantKind {
				t.Errorf("failure = %s/%s/%s, want %s/%s/%s", f.Workflow, f.Step, f.Kind(), WorkflowGenerate, StepLink, tt.wantKind)
			}
		})
	}
}

func TestRegenerate(t *testing.T) {
	tests := []struct {
		name           string
		overrides      map[string]fakeResponse
		wantURL        string
		wantOK         bool
		wantCalls      []string
		wantStep       string
		wantKind       sumsub.ErrorKind
		wantAfterReset bool
	}{
		{
			name:      "success",
			wantURL:   "https://verify.example/u-100",
			wantOK:    true,
			wantCalls: []string{StepStatus, StepReset, StepLink},
		},
		{
			name:      "status not found",
			overrides: map[string]fakeResponse{StepStatus: {404, `{"description":"Applicant not found","code":404}`}},
			wantCalls: []string{StepStatus},
			wantStep:  StepStatus,
			wantKind:  sumsub.ErrKindRemoteRejection,
		},
		{
			name:      "status without applicant id",
			overrides: map[string]fakeResponse{StepStatus: {200, `{"externalUserId":"u-100"}`}},
			wantCalls: []string{StepStatus},
			wantStep:  StepStatus,
			wantKind:  sumsub.ErrKindProtocol,
		},
		{
			name:      "reset rejected",
			overrides: map[string]fakeResponse{StepReset: {409, `{"description":"conflict","code":409}`}},
			wantCalls: []string{StepStatus, StepReset},
			wantStep:  StepReset,
			wantKind:  sumsub.ErrKindRemoteRejection,
		},
		{
			name:           "link fails after reset",
			overrides:      map[string]fakeResponse{StepLink: {500, `<html>oops</html>`}},
			wantCalls:      []string{StepStatus, StepReset, StepLink},
			wantStep:       StepLink,
			wantKind:       sumsub.ErrKindProtocol,
			wantAfterReset: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, client := newFakeSumsub(t, tt.overrides)
			reporter := &recordingReporter{}
			svc := NewService(client, testLevel, reporter, discardLogger())

			url, ok := svc.Regenerate(context.Background(), "u-100")
			if ok != tt.wantOK || url != tt.wantURL {
				t.Errorf("Regenerate() = (%q, %v), want (%q, %v)", url, ok, tt.wantURL, tt.wantOK)
			}

			if calls := fake.recorded(); !equalSteps(calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", calls, tt.wantCalls)
			}

			if tt.wantOK {
				if len(reporter.failures) != 0 {
					t.Errorf("unexpected failure reports: %v", reporter.failures)
				}
				return
			}
			if len(reporter.failures) != 1 {
				t.Fatalf("got %d failure reports, want 1", len(reporter.failures))
			}
			f := reporter.failures[0]
			if f.Workflow != WorkflowRegenerate || f.Step != tt.wantStep || f.Kind() != tt.wantKind {
				t.Errorf("failure = %s/%s/%s, want %s/%s/%s", f.Workflow, f.Step, f.Kind(), WorkflowRegenerate, tt.wantStep, tt.wantKind)
			}
			if f.AfterReset != tt.wantAfterReset {
				t.Errorf("AfterReset = %v, want %v", f.AfterReset, tt.wantAfterReset)
			}
			if f.ExternalUserID != "u-100" || f.RunID == "" {
				t.Errorf("failure missing identifiers: %+v", f)
			}
		})
	}
}

func TestRegenerateBadCredentials(t *testing.T) {
	srv := httptest.NewServer(&fakeSumsub{t: t})
	t.Cleanup(srv.Close)

	client := sumsub.NewClient(srv.URL, sumsub.NewSigner(sumsub.Credentials{AppToken: "test-token"}))
	reporter := &recordingReporter{}
	svc := NewService(client, testLevel, reporter, discardLogger())

	if _, ok := svc.Regenerate(context.Background(), "u-100"); ok {
		t.Fatal("Regenerate() should fail with an empty secret key")
	}
	if len(reporter.failures) != 1 || reporter.failures[0].Kind() != sumsub.ErrKindRemoteRejection {
		t.Errorf("expected one remote rejection, got %+v", reporter.failures)
	}
}

// stubRemote is used where the fake server cannot produce the required failure
type stubRemote struct {
	calls []string
	err   error
}

func (s *stubRemote) FetchSessionLink(ctx context.Context, levelName, externalUserID string) (*sumsub.SessionLink, error) {
	s.calls = append(s.calls, StepLink)
	return &sumsub.SessionLink{URL: "https://verify.example/" + externalUserID}, nil
}

func (s *stubRemote) FetchUserStatus(ctx context.Context, externalUserID string) (*sumsub.UserStatus, error) {
	s.calls = append(s.calls, StepStatus)
	if s.err != nil {
		return nil, s.err
	}
	return &sumsub.UserStatus{ID: "int-" + externalUserID}, nil
}

func (s *stubRemote) ResetUser(ctx context.Context, internalUserID string) (*sumsub.ResetAck, error) {
	s.calls = append(s.calls, StepReset+":"+internalUserID)
	return &sumsub.ResetAck{OK: 1}, nil
}

func TestRegenerateUsesFreshApplicantID(t *testing.T) {
	remote := &stubRemote{}
	svc := NewService(remote, testLevel, nil, nil)

	for _, user := range []string{"a", "b"} {
		if _, ok := svc.Regenerate(context.Background(), user); !ok {
			t.Fatalf("Regenerate(%s) failed", user)
		}
	}

	want := []string{StepStatus, "reset:int-a", StepLink, StepStatus, "reset:int-b", StepLink}
	if !equalSteps(remote.calls, want) {
		t.Errorf("calls = %v, want %v", remote.calls, want)
	}
}

func TestFailureKindUnknown(t *testing.T) {
	remote := &stubRemote{err: errors.New("not a sumsub error")}
	reporter := &recordingReporter{}
	svc := NewService(remote, testLevel, reporter, discardLogger())

	if _, ok := svc.Regenerate(context.Background(), "a"); ok {
		t.Fatal("Regenerate() should fail")
	}
	if got := reporter.failures[0].Kind(); got != "unknown" {
		t.Errorf("Kind() = %q, want unknown", got)
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewLogReporter(slog.New(slog.NewJSONHandler(&buf, nil)))

	_, client := newFakeSumsub(t, map[string]fakeResponse{
		StepLink: {500, `{"description":"internal","code":500,"correlationId":"corr-1"}`},
	})
	svc := NewService(client, testLevel, reporter, discardLogger())

	svc.Regenerate(context.Background(), "u-100")
	svc.Generate(context.Background(), "u-100")

	out := buf.String()
	for _, want := range []string{
		`"error_kind":"remote_rejection"`,
		`"status_code":500`,
		`corr-1`,
		`"after_reset":true`,
		`"step":"link"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}

	snap := reporter.Snapshot()
	if snap.ResetWithoutLink != 1 {
		t.Errorf("ResetWithoutLink = %d, want 1", snap.ResetWithoutLink)
	}
	for _, wf := range []string{WorkflowGenerate, WorkflowRegenerate} {
		key := FailureKey{Workflow: wf, Step: StepLink, Kind: sumsub.ErrKindRemoteRejection}
		if snap.Failures[key] != 1 {
			t.Errorf("Failures[%v] = %d, want 1", key, snap.Failures[key])
		}
	}
}

func TestValidateExternalUserID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"u-100", false},
		{"user_1.test@example.com", false},
		{"urn:user:42", false},
		{"", true},
		{"a b", true},
		{"a&b=c", true},
		{"a/b", true},
		{"a?b", true},
		{"a#b", true},
		{strings.Repeat("x", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateExternalUserID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExternalUserID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}
