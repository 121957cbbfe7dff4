package kyc

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/information-sharing-networks/kyc-demo/internal/sumsub"
)

// Workflow names used in reports and metrics
const (
	WorkflowGenerate   = "generate"
	WorkflowRegenerate = "regenerate"
)

// Step names used in reports and metrics
const (
	StepStatus = "status"
	StepReset  = "reset"
	StepLink   = "link"
)

// Remote is the subset of the Sumsub API used by the workflows (implemented by *sumsub.Client).
type Remote interface {
	FetchSessionLink(ctx context.Context, levelName, externalUserID string) (*sumsub.SessionLink, error)
	FetchUserStatus(ctx context.Context, externalUserID string) (*sumsub.UserStatus, error)
	ResetUser(ctx context.Context, internalUserID string) (*sumsub.ResetAck, error)
}

// Service runs the session link workflows for a single verification level.
type Service struct {
	remote    Remote
	levelName string
	reporter  Reporter
	logger    *slog.Logger
}

// NewService creates a Service. levelName is fixed for the deployment.
func NewService(remote Remote, levelName string, reporter Reporter, logger *slog.Logger) *Service {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		remote:    remote,
		levelName: levelName,
		reporter:  reporter,
		logger:    logger,
	}
}

// LevelName returns the verification level used for new links
func (s *Service) LevelName() string {
	return s.levelName
}

// Generate requests a session link for externalUserID.
// ok is false if the link could not be issued; the cause is sent to the Reporter.
func (s *Service) Generate(ctx context.Context, externalUserID string) (url string, ok bool) {
	wr := s.newRun(WorkflowGenerate, externalUserID)

	link, err := s.remote.FetchSessionLink(ctx, s.levelName, externalUserID)
	if err != nil {
		wr.fail(ctx, StepLink, false, err)
		return "", false
	}

	wr.succeed(ctx)
	return link.URL, true
}

// Regenerate resets the user's verification state and requests a new session link.
// ok is false if any step fails; later steps are not attempted.
func (s *Service) Regenerate(ctx context.Context, externalUserID string) (url string, ok bool) {
	wr := s.newRun(WorkflowRegenerate, externalUserID)

	status, err := s.remote.FetchUserStatus(ctx, externalUserID)
	if err != nil {
		wr.fail(ctx, StepStatus, false, err)
		return "", false
	}
	wr.logger.Debug("applicant found",
		slog.String("applicant_id", status.ID),
	)

	if _, err := s.remote.ResetUser(ctx, status.ID); err != nil {
		wr.fail(ctx, StepReset, false, err)
		return "", false
	}
	wr.logger.Debug("applicant reset",
		slog.String("applicant_id", status.ID),
	)

	link, err := s.remote.FetchSessionLink(ctx, s.levelName, externalUserID)
	if err != nil {
		wr.fail(ctx, StepLink, true, err)
		return "", false
	}

	wr.succeed(ctx)
	return link.URL, true
}

// run carries the identifiers of one workflow invocation
type run struct {
	id             string
	workflow       string
	externalUserID string
	reporter       Reporter
	logger         *slog.Logger
}

func (s *Service) newRun(workflow, externalUserID string) *run {
	id := uuid.NewString()
	return &run{
		id:             id,
		workflow:       workflow,
		externalUserID: externalUserID,
		reporter:       s.reporter,
		logger: s.logger.With(
			slog.String("workflow", workflow),
			slog.String("run_id", id),
			slog.String("external_user_id", externalUserID),
			slog.String("level_name", s.levelName),
		),
	}
}

func (r *run) fail(ctx context.Context, step string, afterReset bool, err error) {
	r.reporter.Report(ctx, Failure{
		Workflow:       r.workflow,
		Step:           step,
		RunID:          r.id,
		ExternalUserID: r.externalUserID,
		AfterReset:     afterReset,
		Err:            err,
	})
}

func (r *run) succeed(ctx context.Context) {
	r.reporter.Succeeded(ctx, r.workflow)
	r.logger.Info("session link issued")
}

var externalUserIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~@:-]{1,128}$`)

// ValidateExternalUserID checks that id can be embedded verbatim in the Sumsub paths and query strings.
// The workflows do not call it; it is for entry points that accept ids from outside (HTTP, CLI).
func ValidateExternalUserID(id string) error {
	if !externalUserIDPattern.MatchString(id) {
		return fmt.Errorf("invalid external user id %q: use 1-128 letters, digits or . _ ~ @ : -", id)
	}
	return nil
}
