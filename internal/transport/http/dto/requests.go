package dto

// Path and query parameters, validated with validate.Struct.

type EventPath struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

type WithdrawPath struct {
	EventID  string `json:"event_id" validate:"required,uuid"`
	Platform string `json:"platform" validate:"required,platform"`
}

type ExportQuery struct {
	EventID string `json:"event_id" validate:"required,uuid"`
	// empty means json
	Format string `json:"format" validate:"omitempty,oneof=json csv text"`
}
