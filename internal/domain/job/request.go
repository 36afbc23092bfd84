package job

import (
	"context"

	"github.com/janhq/genai-proxy/internal/domain/route"
)

// Parameters is the input map sent to the provider.
type Parameters map[string]any

// Attachment is a binary field that must be turned into a URL before dispatch.
type Attachment struct {
	Param string
	Value string
}

// Input is a validated request ready for dispatch.
type Input struct {
	Params      Parameters
	Attachments []Attachment
}

// Request is one job-type specific request variant.
type Request interface {
	// Kind names the variant; it must match the Kind of the route it is sent to.
	Kind() string
	build(ctx context.Context, policy route.Policy) (*Input, error)
}

// Txt2ImgRequest generates images from a text prompt.
type Txt2ImgRequest struct {
	Prompt     string `json:"prompt"`
	NumOutputs *int   `json:"num_outputs,omitempty"`
}

func (*Txt2ImgRequest) Kind() string { return route.KeyTxt2Img }

func (r *Txt2ImgRequest) build(ctx context.Context, policy route.Policy) (*Input, error) {
	prompt, err := requireText(ctx, r.Prompt, "prompt", "Prompt is required")
	if err != nil {
		return nil, err
	}
	params := baseParams(policy)
	params["prompt"] = prompt
	setOutputs(params, policy, r.NumOutputs)
	return &Input{Params: params}, nil
}

// Img2ImgRequest transforms an image guided by a prompt.
type Img2ImgRequest struct {
	Prompt     string   `json:"prompt"`
	Image      string   `json:"image"`
	Strength   *float64 `json:"strength,omitempty"`
	NumOutputs *int     `json:"num_outputs,omitempty"`
}

func (*Img2ImgRequest) Kind() string { return route.KeyImg2Img }

func (r *Img2ImgRequest) build(ctx context.Context, policy route.Policy) (*Input, error) {
	image, err := requireText(ctx, r.Image, "image", "Image is required")
	if err != nil {
		return nil, err
	}
	prompt, err := requireText(ctx, r.Prompt, "prompt", "Prompt is required")
	if err != nil {
		return nil, err
	}

	strength := 0.7
	if r.Strength != nil {
		strength = clampFloat(*r.Strength, 0, 1)
	}

	params := baseParams(policy)
	params["prompt"] = prompt
	params["prompt_strength"] = strength
	setOutputs(params, policy, r.NumOutputs)
	return &Input{Params: params, Attachments: []Attachment{{Param: "image", Value: image}}}, nil
}

// Img2TxtRequest captions an image.
type Img2TxtRequest struct {
	Image string `json:"image"`
}

func (*Img2TxtRequest) Kind() string { return route.KeyImg2Txt }

func (r *Img2TxtRequest) build(ctx context.Context, policy route.Policy) (*Input, error) {
	image, err := requireText(ctx, r.Image, "image", "Image is required")
	if err != nil {
		return nil, err
	}
	return &Input{Params: baseParams(policy), Attachments: []Attachment{{Param: "image", Value: image}}}, nil
}

// PhotoMakerRequest renders a person from a face image and a prompt.
type PhotoMakerRequest struct {
	Prompt     string `json:"prompt"`
	Image      string `json:"image"`
	Style      string `json:"style,omitempty"`
	NumOutputs *int   `json:"num_outputs,omitempty"`
}

func (*PhotoMakerRequest) Kind() string { return route.KeyPhotoMaker }

func (r *PhotoMakerRequest) build(ctx context.Context, policy route.Policy) (*Input, error) {
	image, err := requireText(ctx, r.Image, "image", "Face image is required")
	if err != nil {
		return nil, err
	}
	prompt, err := requireText(ctx, r.Prompt, "prompt", "Prompt is required")
	if err != nil {
		return nil, err
	}

	style := r.Style
	if style == "" {
		style = "(No style)"
	}

	params := baseParams(policy)
	params["prompt"] = applyTrigger(prompt, policy)
	params["style_name"] = style
	setOutputs(params, policy, r.NumOutputs)
	return &Input{Params: params, Attachments: []Attachment{{Param: "input_image", Value: image}}}, nil
}

// Img3DRequest builds a mesh from an image.
type Img3DRequest struct {
	Image string `json:"image"`
}

func (*Img3DRequest) Kind() string { return route.KeyImg3D }

func (r *Img3DRequest) build(ctx context.Context, policy route.Policy) (*Input, error) {
	image, err := requireText(ctx, r.Image, "image", "Image is required")
	if err != nil {
		return nil, err
	}
	return &Input{Params: baseParams(policy), Attachments: []Attachment{{Param: "image", Value: image}}}, nil
}

// Txt3DRequest builds a 3D asset from a prompt.
type Txt3DRequest struct {
	Prompt string `json:"prompt"`
}

func (*Txt3DRequest) Kind() string { return route.KeyTxt3D }

func (r *Txt3DRequest) build(ctx context.Context, policy route.Policy) (*Input, error) {
	prompt, err := requireText(ctx, r.Prompt, "prompt", "Prompt is required")
	if err != nil {
		return nil, err
	}
	params := baseParams(policy)
	params["prompt"] = prompt
	return &Input{Params: params}, nil
}

// NewRequest returns an empty request of the given kind, ready for decoding.
func NewRequest(kind string) (Request, bool) {
	switch kind {
	case route.KeyTxt2Img:
		return &Txt2ImgRequest{}, true
	case route.KeyImg2Img:
		return &Img2ImgRequest{}, true
	case route.KeyImg2Txt:
		return &Img2TxtRequest{}, true
	case route.KeyPhotoMaker:
		return &PhotoMakerRequest{}, true
	case route.KeyImg3D:
		return &Img3DRequest{}, true
	case route.KeyTxt3D:
		return &Txt3DRequest{}, true
	}
	return nil, false
}
