package models

// Requests for the portfolio HTTP endpoints. Defined in domain for
// consistency and reuse.

type PortfolioRequest struct {
	Refresh bool `query:"refresh" json:"refresh"`
}

type ListPositionsRequest struct {
	Status string `query:"status" json:"status" default:"ACTIVE" validate:"oneof=ACTIVE PENDING INACTIVE ALL"`
}

type CreatePositionRequest struct {
	Ticker     string  `json:"ticker" validate:"required,min=1,max=20"`
	Direction  string  `json:"direction" default:"LONG" validate:"oneof=LONG SHORT"`
	EntryPrice float64 `json:"entry_price" validate:"required,gt=0"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
	StopLoss   float64 `json:"stop_loss" validate:"required,gt=0"`
	Target1    float64 `json:"target_1" validate:"required,gt=0"`
	Target2    float64 `json:"target_2" validate:"gte=0"`
	Sector     string  `json:"sector" validate:"max=50"`
	Notes      string  `json:"notes" validate:"max=500"`
}

type UpdateStopRequest struct {
	ID       int64   `param:"id" validate:"required,gt=0"`
	StopLoss float64 `json:"stop_loss" validate:"required,gt=0"`
	Reason   string  `json:"reason" validate:"max=200"`
}

type UpdateTargetRequest struct {
	ID      int64   `param:"id" validate:"required,gt=0"`
	Target1 float64 `json:"target_1" validate:"required,gt=0"`
	Target2 float64 `json:"target_2" validate:"gte=0"`
	Reason  string  `json:"reason" validate:"max=200"`
}

type ClosePositionRequest struct {
	ID        int64   `param:"id" validate:"required,gt=0"`
	ExitPrice float64 `json:"exit_price" validate:"required,gt=0"`
	Reason    string  `json:"reason" default:"MANUAL" validate:"max=200"`
}

type DeletePositionRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

type TradeHistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
