package provider

import "context"

// DesignGenerator produces HTML/CSS for a design prompt.
type DesignGenerator interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GeneratedDesign, error)
}

type GenerateRequest struct {
	Context    string
	UseCase    string
	ScreenType string
}

type GeneratedDesign struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}
