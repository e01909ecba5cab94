package domain

// Stage is a step of the exchange pipeline.
type Stage string

const (
	StageValidating         Stage = "validating"
	StageTokenizing         Stage = "tokenizing"
	StageSettling           Stage = "settling"
	StageAdjustingInventory Stage = "adjusting_inventory"
	StageRecordingHolding   Stage = "recording_holding"
	StageComplete           Stage = "complete"
)

// OperationKind identifies an exchange operation.
type OperationKind string

const (
	OperationPurchase OperationKind = "purchase"
	OperationSale     OperationKind = "sale"
)

// Direction is the ledger direction a settlement token authorizes.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// SalePricePolicy decides what a sale pays out.
type SalePricePolicy string

const (
	// SalePriceCurrent pays the current catalog price.
	SalePriceCurrent SalePricePolicy = "current"
	// SalePricePurchase pays back the holding's pro-rata cost basis.
	SalePricePurchase SalePricePolicy = "purchase"
)

// IsValid reports whether p is a known policy.
func (p SalePricePolicy) IsValid() bool {
	return p == SalePriceCurrent || p == SalePricePurchase
}
