package dto

type GenerateDesignRequest struct {
	Context    string `json:"context" validate:"required,min=5"`
	UseCase    string `json:"useCase" validate:"required,oneof=wireframes hifi"`
	ScreenType string `json:"screenType" validate:"required,oneof=desktop mobile tablet"`
}

type GenerateDesignResponse struct {
	DesignID         string `json:"designId"`
	HTML             string `json:"html"`
	CreditsUsed      int    `json:"creditsUsed"`
	CreditsRemaining int    `json:"creditsRemaining"`
}
