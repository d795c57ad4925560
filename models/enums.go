package models

// BirdType is tracked as a separate inventory line per bird category.
type BirdType string

const (
	BirdBroiler    BirdType = "BROILER"
	BirdParentCull BirdType = "PARENT_CULL"
)

func (b BirdType) Valid() bool {
	return b == BirdBroiler || b == BirdParentCull
}

var BirdTypes = []BirdType{BirdBroiler, BirdParentCull}

// InventoryType is the processing state of stock. LIVE carries a bird count
// next to its weight, SKIN and SKINLESS are weight only.
type InventoryType string

const (
	InvLive     InventoryType = "LIVE"
	InvSkin     InventoryType = "SKIN"
	InvSkinless InventoryType = "SKINLESS"
)

func (i InventoryType) Valid() bool {
	return i == InvLive || i == InvSkin || i == InvSkinless
}

var InventoryTypes = []InventoryType{InvLive, InvSkin, InvSkinless}

// SettlementStatus workflow: DRAFT -> SUBMITTED -> APPROVED -> LOCKED.
// REJECTED is legacy; it is kept for old rows but nothing transitions into it.
type SettlementStatus string

const (
	SettlementDraft     SettlementStatus = "DRAFT"
	SettlementSubmitted SettlementStatus = "SUBMITTED"
	SettlementApproved  SettlementStatus = "APPROVED"
	SettlementLocked    SettlementStatus = "LOCKED"
	SettlementRejected  SettlementStatus = "REJECTED"
)

// CanTransition reports whether a settlement may move from one status to another.
func (s SettlementStatus) CanTransition(to SettlementStatus) bool {
	switch s {
	case SettlementDraft:
		return to == SettlementSubmitted
	case SettlementSubmitted:
		return to == SettlementApproved
	case SettlementApproved:
		return to == SettlementLocked
	default:
		return false
	}
}

type PaymentMethod string

const (
	PayCash   PaymentMethod = "CASH"
	PayUpi    PaymentMethod = "UPI"
	PayCard   PaymentMethod = "CARD"
	PayBank   PaymentMethod = "BANK"
	PayCredit PaymentMethod = "CREDIT"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PayCash, PayUpi, PayCard, PayBank, PayCredit:
		return true
	}
	return false
}

// Settled payment methods compared during reconciliation. CREDIT sales are
// receivables and excluded from the daily declaration.
var SettledPaymentMethods = []PaymentMethod{PayCash, PayUpi, PayCard, PayBank}

type StoreStatus string

const (
	StoreActive      StoreStatus = "ACTIVE"
	StoreMaintenance StoreStatus = "MAINTENANCE"
)

type AdjustmentMode string

const (
	AdjustModeOverwrite AdjustmentMode = "OVERWRITE"
	AdjustModeAdjust    AdjustmentMode = "ADJUST"
)

type VarianceType string

const (
	VariancePositive VarianceType = "POSITIVE"
	VarianceNegative VarianceType = "NEGATIVE"
)

type VarianceLogStatus string

const (
	VarianceLogPending  VarianceLogStatus = "PENDING"
	VarianceLogApproved VarianceLogStatus = "APPROVED"
	VarianceLogDeducted VarianceLogStatus = "DEDUCTED"
)

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
)

type PurchaseStatus string

const (
	PurchaseDraft     PurchaseStatus = "DRAFT"
	PurchaseCommitted PurchaseStatus = "COMMITTED"
	PurchaseCancelled PurchaseStatus = "CANCELLED"
)

type SaleType string

const (
	SalePOS  SaleType = "POS"
	SaleBulk SaleType = "BULK"
)

// Reason codes discriminate ledger entry provenance. Direction is enforced on
// append; RequiresRef entries must point at their originating record.
const (
	ReasonPurchaseReceived = "PURCHASE_RECEIVED"
	ReasonProcessingDebit  = "PROCESSING_DEBIT"
	ReasonProcessingCredit = "PROCESSING_CREDIT"
	ReasonSaleDebit        = "SALE_DEBIT"
	ReasonVariancePositive = "VARIANCE_POSITIVE"
	ReasonVarianceNegative = "VARIANCE_NEGATIVE"
	ReasonAdjustmentCredit = "ADJUSTMENT_CREDIT"
	ReasonAdjustmentDebit  = "ADJUSTMENT_DEBIT"
	ReasonOpeningBalance   = "OPENING_BALANCE"
)

type ReasonCodeInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Direction   string `json:"direction"` // CREDIT or DEBIT
	RequiresRef bool   `json:"requires_ref"`
}

var ReasonCodes = map[string]ReasonCodeInfo{
	ReasonPurchaseReceived: {ReasonPurchaseReceived, "Live birds received from supplier", "CREDIT", true},
	ReasonProcessingDebit:  {ReasonProcessingDebit, "Live birds consumed in processing", "DEBIT", true},
	ReasonProcessingCredit: {ReasonProcessingCredit, "Processed inventory created", "CREDIT", true},
	ReasonSaleDebit:        {ReasonSaleDebit, "Inventory sold to customer", "DEBIT", true},
	ReasonVariancePositive: {ReasonVariancePositive, "Found stock (approved)", "CREDIT", true},
	ReasonVarianceNegative: {ReasonVarianceNegative, "Lost stock (deducted)", "DEBIT", true},
	ReasonAdjustmentCredit: {ReasonAdjustmentCredit, "Manual admin adjustment (increase)", "CREDIT", false},
	ReasonAdjustmentDebit:  {ReasonAdjustmentDebit, "Manual admin adjustment (decrease)", "DEBIT", false},
	ReasonOpeningBalance:   {ReasonOpeningBalance, "Opening stock balance", "CREDIT", false},
}

// Ref types linking ledger entries to their originating records.
const (
	RefTypeProcessing = "PROCESSING"
	RefTypeSale       = "SALE"
	RefTypePurchase   = "PURCHASE"
	RefTypeVariance   = "VARIANCE"
	RefTypeManual     = "MANUAL"
)
