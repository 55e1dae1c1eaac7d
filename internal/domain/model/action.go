package model

// Action tags a metered operation or a ledger entry.
type Action string

const (
	ActionGenerateDesign   Action = "generate_design"
	ActionCreateDesignFile Action = "create_design_file"
	ActionCreateScreenFlow Action = "create_screen_flow"
	ActionExportFigma      Action = "export_figma"
	ActionExportCode       Action = "export_code"

	// Ledger-only tags.
	ActionCreditPurchase   Action = "credit_purchase"
	ActionManualPurchase   Action = "manual_purchase"
	ActionTransferSent     Action = "credit_transfer_sent"
	ActionTransferReceived Action = "credit_transfer_received"
)

const (
	// DefaultCreditsRequired is charged when the caller does not name a cost.
	DefaultCreditsRequired = 6
	// DefaultRateLimit applies to actions without their own hourly ceiling.
	DefaultRateLimit = 50
)

// RateLimit is the hourly ceiling for the action.
func (a Action) RateLimit() int {
	switch a {
	case ActionGenerateDesign:
		return 30
	case ActionCreateDesignFile:
		return 20
	case ActionCreateScreenFlow:
		return 15
	case ActionExportFigma, ActionExportCode:
		return 10
	default:
		return DefaultRateLimit
	}
}

// Counter returns the monthly feature counter the action increments.
func (a Action) Counter() FeatureCounter {
	switch a {
	case ActionCreateDesignFile:
		return CounterDesignFiles
	case ActionCreateScreenFlow:
		return CounterScreenFlows
	case ActionExportFigma:
		return CounterFigmaExports
	case ActionExportCode:
		return CounterCodeExports
	default:
		return CounterNone
	}
}

// IsExport reports whether the action is restricted to paid plans.
func (a Action) IsExport() bool {
	return a == ActionExportFigma || a == ActionExportCode
}
