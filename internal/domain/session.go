package domain

// Phase is the discrete state of one customer's conversation.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseBrowsing       Phase = "browsing_catalog"
	PhaseAwaitZone      Phase = "awaiting_delivery_zone"
	PhaseAwaitName      Phase = "awaiting_name"
	PhaseAwaitPhone     Phase = "awaiting_phone"
	PhaseAwaitConfirm   Phase = "awaiting_confirmation"
	PhaseEditMenu       Phase = "edit_menu"
	PhaseEditName       Phase = "editing_name"
	PhaseEditPhone      Phase = "editing_phone"
	PhaseEditZone       Phase = "editing_zone"
	PhaseEditItem       Phase = "editing_item"
	PhaseCancelConfirm  Phase = "cancel_confirmation"
)

// Session is the mutable per-customer conversation record. It lives only
// in process memory and is only ever mutated by the dialog router while
// the store holds that customer's lock.
type Session struct {
	CustomerID string

	Phase      Phase
	PageCursor int
	Category   Category

	LastViewedItem   *Item
	LastDeliveryZone string
	LastEtaLabel     string
	CustomerName     string
	CustomerPhone    string

	// PriorPhase is only set while Phase is PhaseCancelConfirm, so a
	// "no" can put the customer back where they were.
	PriorPhase Phase
}

// NewSession returns the default record for a first-contact customer.
func NewSession(customerID string) *Session {
	return &Session{
		CustomerID: customerID,
		Phase:      PhaseIdle,
		PageCursor: 1,
		Category:   CategoryIncubators,
	}
}

// Reset clears everything back to first-contact defaults, keeping the key.
func (s *Session) Reset() {
	*s = *NewSession(s.CustomerID)
}

// CheckoutComplete reports whether every field confirmation requires has
// been collected.
func (s *Session) CheckoutComplete() bool {
	return s.CustomerName != "" &&
		s.CustomerPhone != "" &&
		s.LastViewedItem != nil &&
		s.LastDeliveryZone != ""
}

// InCheckout reports whether the session is inside the checkout or edit
// flow, the phases where the cancel vocabulary is live. Awaiting a zone
// counts only once an item is on the order; a bare delivery inquiry is
// not a checkout.
func (s *Session) InCheckout() bool {
	switch s.Phase {
	case PhaseAwaitZone:
		return s.LastViewedItem != nil
	case PhaseAwaitName, PhaseAwaitPhone, PhaseAwaitConfirm,
		PhaseEditMenu, PhaseEditName, PhaseEditPhone, PhaseEditZone, PhaseEditItem:
		return true
	}
	return false
}
