package job

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/genai-proxy/internal/domain/route"
	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

type fakeProvider struct {
	mu          sync.Mutex
	created     []Target
	params      []Parameters
	predictions map[string]*Prediction
	createErr   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{predictions: map[string]*Prediction{}}
}

func (f *fakeProvider) CreatePrediction(_ context.Context, target Target, params Parameters) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, target)
	f.params = append(f.params, params)
	id := "pred-" + string(rune('a'+len(f.created)-1))
	f.predictions[id] = &Prediction{ID: id, Status: StatusQueued}
	return id, nil
}

func (f *fakeProvider) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.predictions[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeJobNotFound, "Prediction not found", nil, "test")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProvider) set(id string, p Prediction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.predictions[id] = &p
}

func (f *fakeProvider) lastParams() Parameters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params[len(f.params)-1]
}

type fakeVersions struct {
	version     string
	err         error
	invalidated []string
}

func (f *fakeVersions) Resolve(context.Context, string) (string, error) { return f.version, f.err }
func (f *fakeVersions) Invalidate(model string)                         { f.invalidated = append(f.invalidated, model) }

type fakeAttachments struct{ seen []string }

func (f *fakeAttachments) Resolve(_ context.Context, value string) (string, error) {
	f.seen = append(f.seen, value)
	return "https://files.example/" + value, nil
}

func newTestService(t *testing.T) (*Service, *fakeProvider, *fakeVersions, *fakeAttachments) {
	t.Helper()
	registry, err := route.NewRegistry(route.Defaults())
	require.NoError(t, err)
	provider := newFakeProvider()
	versions := &fakeVersions{version: "v-latest"}
	attachments := &fakeAttachments{}
	return NewService(registry, provider, versions, attachments, zerolog.Nop()), provider, versions, attachments
}

func intPtr(v int) *int { return &v }

func TestSubmitReturnsBeforeCompletion(t *testing.T) {
	svc, provider, _, _ := newTestService(t)

	id, err := svc.Submit(context.Background(), route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "a red fox"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	j, err := svc.Poll(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, j.Status)
	assert.Nil(t, j.Output)

	provider.set(id, Prediction{ID: id, Status: StatusSucceeded, Output: NewListOutput([]json.RawMessage{json.RawMessage(`"https://x/0.webp"`)})})
	j, err = svc.Poll(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, j.Status)
	assert.False(t, j.Output.IsEmpty())
}

func TestPollUnknownID(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, id := range []string{"missing", ""} {
		j, err := svc.Poll(context.Background(), id)
		assert.Nil(t, j)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeJobNotFound))
	}
}

func TestPollTerminalInvariants(t *testing.T) {
	svc, provider, _, _ := newTestService(t)
	ctx := context.Background()

	provider.set("ok-empty", Prediction{Status: StatusSucceeded})
	_, err := svc.Poll(ctx, "ok-empty")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUpstreamUnavailable))

	provider.set("ok-null", Prediction{Status: StatusSucceeded, Output: NewSingleOutput(json.RawMessage("null"))})
	_, err = svc.Poll(ctx, "ok-null")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUpstreamUnavailable))

	provider.set("failed", Prediction{Status: StatusFailed})
	j, err := svc.Poll(ctx, "failed")
	require.NoError(t, err)
	assert.Equal(t, "prediction failed", j.Error)

	provider.set("failed-msg", Prediction{Status: StatusFailed, Error: "CUDA out of memory"})
	j, err = svc.Poll(ctx, "failed-msg")
	require.NoError(t, err)
	assert.Equal(t, "CUDA out of memory", j.Error)

	provider.set("weird", Prediction{Status: Status("exploded")})
	_, err = svc.Poll(ctx, "weird")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUpstreamUnavailable))
}

func TestSubmitClampsOutputs(t *testing.T) {
	svc, provider, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), route.KeyPhotoMaker, &PhotoMakerRequest{
		Prompt: "img at the beach", Image: "data:image/png;base64,AAAA", NumOutputs: intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, provider.lastParams()["num_outputs"])

	_, err = svc.Submit(context.Background(), route.KeyPhotoMaker, &PhotoMakerRequest{
		Prompt: "img", Image: "data:image/png;base64,AAAA", NumOutputs: intPtr(-3),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.lastParams()["num_outputs"])
}

func TestSubmitInjectsTriggerToken(t *testing.T) {
	svc, provider, _, attachments := newTestService(t)

	_, err := svc.Submit(context.Background(), route.KeyPhotoMaker, &PhotoMakerRequest{
		Prompt: "a sunset", Image: "face.png",
	})
	require.NoError(t, err)

	params := provider.lastParams()
	prompt, ok := params["prompt"].(string)
	require.True(t, ok)
	assert.Contains(t, prompt, "img")
	assert.Contains(t, prompt, "a sunset")
	assert.Equal(t, "(No style)", params["style_name"])
	assert.Equal(t, 2, params["num_outputs"])
	assert.Equal(t, "https://files.example/face.png", params["input_image"])
	assert.Equal(t, []string{"face.png"}, attachments.seen)
}

func TestSubmitKeepsTriggerTokenInAnyCase(t *testing.T) {
	svc, provider, _, _ := newTestService(t)

	for _, prompt := range []string{"portrait IMG", "an Img of a cat", "img"} {
		_, err := svc.Submit(context.Background(), route.KeyPhotoMaker, &PhotoMakerRequest{
			Prompt: prompt, Image: "face.png",
		})
		require.NoError(t, err)
		assert.Equal(t, prompt, provider.lastParams()["prompt"])
	}
}

func TestSubmitResolvesVersion(t *testing.T) {
	svc, provider, versions, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "fox"})
	require.NoError(t, err)
	assert.Equal(t, Target{Model: "black-forest-labs/flux-schnell", Version: "v-latest"}, provider.created[0])

	versions.version = ""
	_, err = svc.Submit(ctx, route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "fox"})
	require.NoError(t, err)
	assert.Equal(t, "", provider.created[1].Version)

	_, err = svc.Submit(ctx, route.KeyImg2Txt, &Img2TxtRequest{Image: "https://x/cat.png"})
	require.NoError(t, err)
	assert.True(t, len(provider.created[2].Version) > 10)
}

func TestSubmitErrors(t *testing.T) {
	svc, provider, versions, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "nope", &Txt2ImgRequest{Prompt: "x"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeRouteNotFound))

	_, err = svc.Submit(ctx, route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "   "})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Equal(t, "Prompt is required", platformerrors.GetPlatformError(err).Message)

	_, err = svc.Submit(ctx, route.KeyTxt2Img, &Img2TxtRequest{Image: "x"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))

	provider.createErr = platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeUpstreamUnavailable, "boom", errors.New("dial"), "test")
	_, err = svc.Submit(ctx, route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "fox"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUpstreamUnavailable))
	assert.Equal(t, []string{"black-forest-labs/flux-schnell"}, versions.invalidated)
}

func TestSubmitRejectedInputKeepsCachedVersion(t *testing.T) {
	svc, provider, versions, _ := newTestService(t)
	ctx := context.Background()

	provider.createErr = platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeValidation, "input.num_outputs: must be <= 4", nil, "test")
	_, err := svc.Submit(ctx, route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "fox"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Empty(t, versions.invalidated)
}

func TestValidateRequiredFields(t *testing.T) {
	ctx := context.Background()
	routes := map[string]route.Route{}
	for _, r := range route.Defaults() {
		r.Kind = r.Key
		routes[r.Key] = r
	}

	tests := []struct {
		key  string
		req  Request
		want string
	}{
		{route.KeyTxt2Img, &Txt2ImgRequest{}, "Prompt is required"},
		{route.KeyImg2Img, &Img2ImgRequest{Prompt: "x"}, "Image is required"},
		{route.KeyImg2Img, &Img2ImgRequest{Image: "x"}, "Prompt is required"},
		{route.KeyImg2Txt, &Img2TxtRequest{}, "Image is required"},
		{route.KeyPhotoMaker, &PhotoMakerRequest{Prompt: "x"}, "Face image is required"},
		{route.KeyImg3D, &Img3DRequest{}, "Image is required"},
		{route.KeyTxt3D, &Txt3DRequest{}, "Prompt is required"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.want, func(t *testing.T) {
			_, err := Validate(ctx, routes[tt.key], tt.req)
			pe := platformerrors.GetPlatformError(err)
			require.NotNil(t, pe)
			assert.Equal(t, platformerrors.ErrorTypeValidation, pe.Type)
			assert.Equal(t, tt.want, pe.Message)
		})
	}
}

func TestValidateImg2ImgStrength(t *testing.T) {
	rt := route.Route{Key: route.KeyImg2Img, Kind: route.KeyImg2Img, Policy: route.Policy{MaxOutputs: 4, DefaultOutputs: 1}}
	strength := 3.5

	in, err := Validate(context.Background(), rt, &Img2ImgRequest{Prompt: " fox ", Image: "u"})
	require.NoError(t, err)
	assert.Equal(t, 0.7, in.Params["prompt_strength"])
	assert.Equal(t, "fox", in.Params["prompt"])

	in, err = Validate(context.Background(), rt, &Img2ImgRequest{Prompt: "fox", Image: "u", Strength: &strength})
	require.NoError(t, err)
	assert.Equal(t, 1.0, in.Params["prompt_strength"])
}

func TestCheckRoutes(t *testing.T) {
	registry, err := route.NewRegistry(route.Defaults())
	require.NoError(t, err)
	assert.NoError(t, CheckRoutes(registry.Routes()))

	assert.Error(t, CheckRoutes([]route.Route{{Key: "x", Kind: "video"}}))
}

func TestRunnerWaitsForTerminal(t *testing.T) {
	svc, provider, _, _ := newTestService(t)
	runner := NewRunner(svc, 5*time.Millisecond, zerolog.Nop())

	go func() {
		time.Sleep(20 * time.Millisecond)
		provider.set("pred-a", Prediction{Status: StatusRunning})
		time.Sleep(20 * time.Millisecond)
		provider.set("pred-a", Prediction{Status: StatusSucceeded, Output: NewSingleOutput(json.RawMessage(`"a caption"`))})
	}()

	j, err := runner.Run(context.Background(), route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "fox"})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, j.Status)
	assert.Equal(t, OutputSingle, j.Output.Kind())
}

func TestRunnerStopsOnContext(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	runner := NewRunner(svc, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, route.KeyTxt2Img, &Txt2ImgRequest{Prompt: "fox"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
