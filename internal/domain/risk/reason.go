package risk

// Reason is a closed enumeration of why a product is at risk
type Reason string

const (
	ReasonExpired    Reason = "expired"
	ReasonNearExpiry Reason = "near_expiry"
	ReasonLowStock   Reason = "low_stock"
	ReasonSlowMoving Reason = "slow_moving"
)

// IsValid checks if the reason is a known tag
func (r Reason) IsValid() bool {
	switch r {
	case ReasonExpired, ReasonNearExpiry, ReasonLowStock, ReasonSlowMoving:
		return true
	}
	return false
}

// String returns the string representation of Reason
func (r Reason) String() string {
	return string(r)
}

// ActionType is a closed enumeration of recommended actions
type ActionType string

const (
	ActionClearance ActionType = "clearance"
	ActionPromotion ActionType = "promotion"
	ActionRestock   ActionType = "restock"
	ActionReview    ActionType = "review"
)

// IsValid checks if the action type is known
func (a ActionType) IsValid() bool {
	switch a {
	case ActionClearance, ActionPromotion, ActionRestock, ActionReview:
		return true
	}
	return false
}

// String returns the string representation of ActionType
func (a ActionType) String() string {
	return string(a)
}

// DiscountRange is a [min, max] percentage pair, marshalled as an array
type DiscountRange [2]int

// RecommendedAction is the single action derived for an at-risk item
type RecommendedAction struct {
	Type          ActionType     `json:"action_type"`
	Reasoning     string         `json:"reasoning"`
	RestockQty    *int           `json:"restock_qty,omitempty"`
	DiscountRange *DiscountRange `json:"discount_range,omitempty"`
}
