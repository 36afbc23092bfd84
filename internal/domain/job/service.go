package job

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/domain/route"
	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

const defaultFailureMessage = "prediction failed"

// Target is the upstream model a submission is sent to. An empty Version
// selects the model-scoped endpoint, which runs the latest deployment.
type Target struct {
	Model   string
	Version string
}

// Prediction is the provider's view of a job, already normalized to canonical
// status and output.
type Prediction struct {
	ID     string
	Status Status
	Output *Output
	Error  string
}

// Job is the polling result returned to callers.
type Job struct {
	ID     string
	Status Status
	Output *Output
	Error  string
}

// Provider is the upstream inference API.
type Provider interface {
	CreatePrediction(ctx context.Context, target Target, params Parameters) (string, error)
	// GetPrediction returns a JobNotFound error for ids the provider does not know.
	GetPrediction(ctx context.Context, id string) (*Prediction, error)
}

// VersionResolver maps an unpinned model to its latest published version.
// An empty version with a nil error means the model publishes none.
type VersionResolver interface {
	Resolve(ctx context.Context, model string) (string, error)
	Invalidate(model string)
}

// AttachmentResolver turns an attachment value into a URL the provider can fetch.
type AttachmentResolver interface {
	Resolve(ctx context.Context, value string) (string, error)
}

// RouteResolver looks up a route by job type.
type RouteResolver interface {
	Resolve(ctx context.Context, key string) (route.Route, error)
}

// Service validates, dispatches and polls jobs.
type Service struct {
	routes      RouteResolver
	provider    Provider
	versions    VersionResolver
	attachments AttachmentResolver
	log         zerolog.Logger
}

func NewService(routes RouteResolver, provider Provider, versions VersionResolver, attachments AttachmentResolver, log zerolog.Logger) *Service {
	return &Service{
		routes:      routes,
		provider:    provider,
		versions:    versions,
		attachments: attachments,
		log:         log.With().Str("component", "job-service").Logger(),
	}
}

// Submission is a validated request bound to its upstream target.
type Submission struct {
	Route  route.Route
	Target Target
	Params Parameters
}

// Prepare resolves the route, validates req, uploads attachments and picks
// the upstream version. It performs no submission.
func (s *Service) Prepare(ctx context.Context, key string, req Request) (*Submission, error) {
	rt, err := s.routes.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	input, err := Validate(ctx, rt, req)
	if err != nil {
		return nil, err
	}

	for _, att := range input.Attachments {
		url, err := s.attachments.Resolve(ctx, att.Value)
		if err != nil {
			return nil, err
		}
		input.Params[att.Param] = url
	}

	target := Target{Model: rt.Reference.Model(), Version: rt.Reference.Version}
	if !rt.Reference.Pinned() {
		version, err := s.versions.Resolve(ctx, target.Model)
		if err != nil {
			return nil, err
		}
		target.Version = version
	}

	return &Submission{Route: rt, Target: target, Params: input.Params}, nil
}

// Dispatch sends a prepared submission upstream and returns the job id.
func (s *Service) Dispatch(ctx context.Context, sub *Submission) (string, error) {
	id, err := s.provider.CreatePrediction(ctx, sub.Target, sub.Params)
	if err != nil {
		// Only a provider-side failure can mean the cached version went away.
		if !sub.Route.Reference.Pinned() && sub.Target.Version != "" &&
			platformerrors.IsErrorType(err, platformerrors.ErrorTypeUpstreamUnavailable) {
			s.versions.Invalidate(sub.Target.Model)
		}
		return "", err
	}

	s.log.Info().
		Str("route", sub.Route.Key).
		Str("model", sub.Target.Model).
		Str("version", sub.Target.Version).
		Bool("pinned", sub.Route.Reference.Pinned()).
		Str("prediction_id", id).
		Msg("job submitted")

	return id, nil
}

// Submit validates and dispatches req. It returns as soon as the provider has
// accepted the job.
func (s *Service) Submit(ctx context.Context, key string, req Request) (string, error) {
	sub, err := s.Prepare(ctx, key, req)
	if err != nil {
		return "", err
	}
	return s.Dispatch(ctx, sub)
}

// Poll fetches the current state of a job from the provider.
func (s *Service) Poll(ctx context.Context, id string) (*Job, error) {
	if id == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeJobNotFound, "Prediction not found", nil, "job-not-found")
	}

	p, err := s.provider.GetPrediction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.IsValid() {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUpstreamUnavailable,
			fmt.Sprintf("upstream reported unknown status %q", p.Status),
			nil, "job-unknown-status", map[string]any{"prediction_id": id})
	}

	j := &Job{ID: id, Status: p.Status}
	switch p.Status {
	case StatusSucceeded:
		if p.Output.IsEmpty() {
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeUpstreamUnavailable,
				"upstream reported success without output",
				nil, "job-missing-output", map[string]any{"prediction_id": id})
		}
		j.Output = p.Output
	case StatusFailed:
		j.Error = p.Error
		if j.Error == "" {
			j.Error = defaultFailureMessage
		}
	case StatusCanceled:
		j.Error = p.Error
	}
	return j, nil
}

// CheckRoutes verifies every route accepts a known request variant.
func CheckRoutes(routes []route.Route) error {
	for _, rt := range routes {
		if _, ok := NewRequest(rt.Kind); !ok {
			return fmt.Errorf("route %q has unknown kind %q", rt.Key, rt.Kind)
		}
	}
	return nil
}
