package route

// Built-in route keys.
const (
	KeyTxt2Img    = "txt2img"
	KeyImg2Img    = "img2img"
	KeyImg2Txt    = "img2txt"
	KeyPhotoMaker = "photomaker"
	KeyImg3D      = "img3d"
	KeyTxt3D      = "txt3d"
)

// Defaults returns the built-in route table. txt2img, img3d and txt3d follow the
// provider's latest version; the others are pinned.
func Defaults() []Route {
	return []Route{
		{
			Key:       KeyTxt2Img,
			Reference: Reference{Owner: "black-forest-labs", Name: "flux-schnell"},
			Policy: Policy{
				MaxOutputs:     4,
				DefaultOutputs: 1,
				Defaults:       map[string]any{"output_format": "webp"},
			},
		},
		{
			Key: KeyImg2Img,
			Reference: Reference{
				Owner:   "stability-ai",
				Name:    "sdxl",
				Version: "7762fd07cf82c948538e41f63f77d685e02b063e37e496e96eefd46c929f9bdc",
			},
			Policy: Policy{MaxOutputs: 4, DefaultOutputs: 1},
		},
		{
			Key: KeyImg2Txt,
			Reference: Reference{
				Owner:   "salesforce",
				Name:    "blip",
				Version: "2e1dddc8621f72155f24cf2e0adbde548458d3cab9f00c0139eea840d0ac4746",
			},
			Policy: Policy{Defaults: map[string]any{"task": "image_captioning"}},
		},
		{
			Key: KeyPhotoMaker,
			Reference: Reference{
				Owner:   "tencentarc",
				Name:    "photomaker",
				Version: "ddfc2b08d209f9fa8c1eca692712918bd449f695dabb4a958da31802a9570fe4",
			},
			Policy: Policy{
				MaxOutputs:      4,
				DefaultOutputs:  2,
				TriggerToken:    "img",
				TriggerTemplate: "a photo of a person img, %s",
			},
		},
		{
			Key:       KeyImg3D,
			Reference: Reference{Owner: "tencent", Name: "hunyuan3d-2"},
			Policy: Policy{Defaults: map[string]any{
				"steps":             50,
				"guidance_scale":    5.5,
				"octree_resolution": 256,
				"remove_background": true,
			}},
		},
		{
			Key:       KeyTxt3D,
			Reference: Reference{Owner: "cjwbw", Name: "shap-e"},
			Policy: Policy{Defaults: map[string]any{
				"batch_size":     1,
				"render_mode":    "nerf",
				"render_size":    256,
				"guidance_scale": 15,
				"save_mesh":      true,
			}},
		},
	}
}
