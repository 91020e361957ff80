package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
	"github.com/yungbote/hatchbot-backend/internal/store"
)

// DialogResult is one turn's outcome: the reply to send back, plus the
// completed Order when this turn was the confirmation.
type DialogResult struct {
	Reply types.Reply
	Order *types.Order
}

type DialogService interface {
	Handle(rawText string, sess *types.Session) DialogResult
}

type DialogConfig struct {
	PageSize            int
	ZoneShortcutEnabled bool
}

type dialogService struct {
	log     *logger.Logger
	catalog *store.Catalog
	zones   *store.Zones
	orders  OrderService
	cfg     DialogConfig
	rules   []dialogRule
	phases  map[types.Phase]phaseHandler
	now     func() time.Time
}

// dialogRule is one priority slot in the routing table. Rules run top
// to bottom; the first one that consumes the turn wins.
type dialogRule struct {
	name string
	run  func(d *dialogService, in inbound, sess *types.Session) (DialogResult, bool)
}

type phaseHandler func(d *dialogService, in inbound, sess *types.Session) (DialogResult, bool)

type inbound struct {
	text string
	low  string
}

var capacityRe = regexp.MustCompile(`[0-9]{2,5}`)

var (
	warrantyRe     = regexp.MustCompile(`warranty|guarantee`)
	solarRe        = regexp.MustCompile(`backup|inverter|power|solar`)
	chicksRe       = regexp.MustCompile(`sell.*chicks|chicks|kienyeji`)
	payRe          = regexp.MustCompile(`payment|mpesa|cash`)
	includeSolarRe = regexp.MustCompile(`include.*solar|solar.*include`)
)

func NewDialogService(log *logger.Logger, catalog *store.Catalog, zones *store.Zones, orders OrderService, cfg DialogConfig) (DialogService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if zones == nil {
		return nil, fmt.Errorf("zones required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 6
	}

	d := &dialogService{
		log:     log.With("service", "DialogService"),
		catalog: catalog,
		zones:   zones,
		orders:  orders,
		cfg:     cfg,
		now:     time.Now,
	}
	d.rules = []dialogRule{
		{name: "cancel", run: (*dialogService).ruleCancel},
		{name: "category_jump", run: (*dialogService).ruleCategoryJump},
		{name: "phase", run: (*dialogService).rulePhase},
		{name: "stateless", run: (*dialogService).ruleStateless},
		{name: "fallback", run: (*dialogService).ruleFallback},
	}
	d.phases = map[types.Phase]phaseHandler{
		types.PhaseBrowsing:      (*dialogService).phaseBrowsing,
		types.PhaseAwaitZone:     (*dialogService).phaseAwaitZone,
		types.PhaseAwaitName:     (*dialogService).phaseAwaitName,
		types.PhaseAwaitPhone:    (*dialogService).phaseAwaitPhone,
		types.PhaseAwaitConfirm:  (*dialogService).phaseAwaitConfirm,
		types.PhaseEditMenu:      (*dialogService).phaseEditMenu,
		types.PhaseEditName:      (*dialogService).phaseEditName,
		types.PhaseEditPhone:     (*dialogService).phaseEditPhone,
		types.PhaseEditZone:      (*dialogService).phaseEditZone,
		types.PhaseEditItem:      (*dialogService).phaseEditItem,
		types.PhaseCancelConfirm: (*dialogService).phaseCancelConfirm,
	}
	return d, nil
}

// Handle routes one customer turn through the rule table. The caller
// holds the session lock; everything here is pure in-memory work.
func (d *dialogService) Handle(rawText string, sess *types.Session) DialogResult {
	text := strings.TrimSpace(rawText)
	in := inbound{text: text, low: strings.ToLower(text)}

	for _, rule := range d.rules {
		if res, ok := rule.run(d, in, sess); ok {
			d.log.Debug("Turn routed",
				"customer_id", sess.CustomerID,
				"rule", rule.name,
				"phase", string(sess.Phase),
			)
			return res
		}
	}

	// The fallback rule always consumes; reaching here is a table bug.
	d.log.Error("Rule table fell through", "customer_id", sess.CustomerID, "text", in.low)
	return DialogResult{Reply: d.menuReply(fallbackText)}
}

func (d *dialogService) ruleNames() []string {
	names := make([]string, 0, len(d.rules))
	for _, r := range d.rules {
		names = append(names, r.name)
	}
	return names
}

// ---------- rule 1: cancel guard ----------

func (d *dialogService) ruleCancel(in inbound, sess *types.Session) (DialogResult, bool) {
	if !sess.InCheckout() {
		return DialogResult{}, false
	}
	switch in.low {
	case "cancel", "stop", "menu":
	default:
		return DialogResult{}, false
	}
	sess.PriorPhase = sess.Phase
	sess.Phase = types.PhaseCancelConfirm
	return DialogResult{Reply: types.NewReply(cancelAskText).WithOptions(cancelButtons...)}, true
}

// ---------- rule 2: category jump (Idle only) ----------

func (d *dialogService) ruleCategoryJump(in inbound, sess *types.Session) (DialogResult, bool) {
	if sess.Phase != types.PhaseIdle {
		return DialogResult{}, false
	}
	switch in.low {
	case "1", "incubator", "incubators", "egg", "eggs":
		return d.browseCategory(sess, types.CategoryIncubators), true
	case "chick", "chicks", "kienyeji":
		if d.catalog.HasCategory(types.CategoryChicks) {
			return d.browseCategory(sess, types.CategoryChicks), true
		}
		return DialogResult{}, false
	case "cage", "cages":
		if d.catalog.HasCategory(types.CategoryCages) {
			return d.browseCategory(sess, types.CategoryCages), true
		}
		return DialogResult{}, false
	case "2":
		sess.Phase = types.PhaseAwaitZone
		return DialogResult{Reply: types.NewReply(deliveryTermsText)}, true
	case "3":
		return DialogResult{Reply: types.NewReply(troubleshootText)}, true
	case "4":
		sess.Reset()
		return DialogResult{Reply: types.NewReply(agentText)}, true
	}
	return DialogResult{}, false
}

func (d *dialogService) browseCategory(sess *types.Session, cat types.Category) DialogResult {
	sess.Phase = types.PhaseBrowsing
	sess.Category = cat
	sess.PageCursor = 1
	return DialogResult{Reply: d.pageReply(sess)}
}

// ---------- rule 3: phase handler ----------

func (d *dialogService) rulePhase(in inbound, sess *types.Session) (DialogResult, bool) {
	handler, ok := d.phases[sess.Phase]
	if !ok {
		return DialogResult{}, false
	}
	return handler(d, in, sess)
}

func (d *dialogService) phaseBrowsing(in inbound, sess *types.Session) (DialogResult, bool) {
	switch in.low {
	case "next", "more":
		sess.PageCursor++
		return DialogResult{Reply: d.pageReply(sess)}, true
	case "back", "prev", "previous":
		sess.PageCursor--
		return DialogResult{Reply: d.pageReply(sess)}, true
	}
	if item, ok := d.pickItem(in, sess); ok {
		sess.LastViewedItem = &item
		sess.Phase = types.PhaseAwaitZone
		return DialogResult{Reply: d.itemDetailReply(item)}, true
	}
	return DialogResult{}, false
}

func (d *dialogService) phaseAwaitZone(in inbound, sess *types.Session) (DialogResult, bool) {
	zone, ok := d.zones.Match(in.text)
	if !ok {
		return DialogResult{Reply: types.NewReply(zonePromptText)}, true
	}
	sess.LastDeliveryZone = zone
	sess.LastEtaLabel = d.zones.EtaLabel(zone)

	if sess.LastViewedItem != nil {
		sess.Phase = types.PhaseAwaitName
		return DialogResult{Reply: types.NewReply(zoneAckCheckoutText(zone, sess.LastEtaLabel))}, true
	}
	sess.Phase = types.PhaseIdle
	return DialogResult{Reply: types.NewReply(zoneAckInquiryText(zone, sess.LastEtaLabel))}, true
}

func (d *dialogService) phaseAwaitName(in inbound, sess *types.Session) (DialogResult, bool) {
	name, ok := normalizeName(in.text)
	if !ok {
		return DialogResult{Reply: types.NewReply(namePromptText)}, true
	}
	sess.CustomerName = name
	sess.Phase = types.PhaseAwaitPhone
	return DialogResult{Reply: types.NewReply(askPhoneText(name))}, true
}

func (d *dialogService) phaseAwaitPhone(in inbound, sess *types.Session) (DialogResult, bool) {
	phone, ok := normalizePhone(in.text)
	if !ok {
		return DialogResult{Reply: types.NewReply(phonePromptText)}, true
	}
	sess.CustomerPhone = phone
	sess.Phase = types.PhaseAwaitConfirm
	return DialogResult{Reply: d.summaryReply(sess)}, true
}

func (d *dialogService) phaseAwaitConfirm(in inbound, sess *types.Session) (DialogResult, bool) {
	switch in.low {
	case "confirm":
		return d.confirm(sess), true
	case "edit":
		sess.Phase = types.PhaseEditMenu
		return DialogResult{Reply: types.NewReply(editMenuText)}, true
	}
	return DialogResult{Reply: d.summaryReply(sess)}, true
}

func (d *dialogService) phaseEditMenu(in inbound, sess *types.Session) (DialogResult, bool) {
	switch in.low {
	case "1", "name":
		sess.Phase = types.PhaseEditName
		return DialogResult{Reply: types.NewReply(editNamePromptText)}, true
	case "2", "phone":
		sess.Phase = types.PhaseEditPhone
		return DialogResult{Reply: types.NewReply(editPhonePromptText)}, true
	case "3", "county", "zone":
		sess.Phase = types.PhaseEditZone
		return DialogResult{Reply: types.NewReply(editZonePromptText)}, true
	case "4", "item", "incubator":
		sess.Phase = types.PhaseEditItem
		sess.PageCursor = 1
		return DialogResult{Reply: d.pageReply(sess)}, true
	}
	return DialogResult{Reply: types.NewReply(editMenuText)}, true
}

func (d *dialogService) phaseEditName(in inbound, sess *types.Session) (DialogResult, bool) {
	name, ok := normalizeName(in.text)
	if !ok {
		return DialogResult{Reply: types.NewReply(namePromptText)}, true
	}
	sess.CustomerName = name
	sess.Phase = types.PhaseAwaitConfirm
	return DialogResult{Reply: d.summaryReply(sess)}, true
}

func (d *dialogService) phaseEditPhone(in inbound, sess *types.Session) (DialogResult, bool) {
	phone, ok := normalizePhone(in.text)
	if !ok {
		return DialogResult{Reply: types.NewReply(phonePromptText)}, true
	}
	sess.CustomerPhone = phone
	sess.Phase = types.PhaseAwaitConfirm
	return DialogResult{Reply: d.summaryReply(sess)}, true
}

func (d *dialogService) phaseEditZone(in inbound, sess *types.Session) (DialogResult, bool) {
	zone, ok := d.zones.Match(in.text)
	if !ok {
		return DialogResult{Reply: types.NewReply(zonePromptText)}, true
	}
	sess.LastDeliveryZone = zone
	sess.LastEtaLabel = d.zones.EtaLabel(zone)
	sess.Phase = types.PhaseAwaitConfirm
	return DialogResult{Reply: d.summaryReply(sess)}, true
}

func (d *dialogService) phaseEditItem(in inbound, sess *types.Session) (DialogResult, bool) {
	switch in.low {
	case "next", "more":
		sess.PageCursor++
		return DialogResult{Reply: d.pageReply(sess)}, true
	case "back", "prev", "previous":
		sess.PageCursor--
		return DialogResult{Reply: d.pageReply(sess)}, true
	}
	if item, ok := d.pickItem(in, sess); ok {
		sess.LastViewedItem = &item
		sess.Phase = types.PhaseAwaitConfirm
		return DialogResult{Reply: d.summaryReply(sess)}, true
	}
	return DialogResult{Reply: d.pageReply(sess)}, true
}

func (d *dialogService) phaseCancelConfirm(in inbound, sess *types.Session) (DialogResult, bool) {
	switch in.low {
	case "yes", "y":
		sess.Reset()
		return DialogResult{Reply: d.menuReply(cancelledText)}, true
	case "no", "n":
		prior := sess.PriorPhase
		if prior == "" {
			prior = types.PhaseIdle
		}
		sess.Phase = prior
		sess.PriorPhase = ""
		return DialogResult{Reply: d.standingPrompt(sess)}, true
	}
	return DialogResult{Reply: types.NewReply(cancelAskText).WithOptions(cancelButtons...)}, true
}

// ---------- rule 4: stateless intents ----------

func (d *dialogService) ruleStateless(in inbound, sess *types.Session) (DialogResult, bool) {
	switch in.low {
	case "", "hi", "hello", "menu", "start":
		sess.Phase = types.PhaseIdle
		return DialogResult{Reply: d.welcomeReply()}, true
	}

	if strings.Contains(in.low, "agent") {
		sess.Reset()
		return DialogResult{Reply: types.NewReply(agentText)}, true
	}

	for _, k := range []string{"capacities", "capacity", "prices", "price", "bei", "gharama"} {
		if strings.Contains(in.low, k) {
			return d.browseCategory(sess, types.CategoryIncubators), true
		}
	}

	if strings.Contains(in.low, "deliver") {
		sess.Phase = types.PhaseAwaitZone
		return DialogResult{Reply: types.NewReply(deliveryTermsText)}, true
	}

	for _, k := range []string{"troubleshoot", "hatch rate", "problem", "fault", "issue"} {
		if strings.Contains(in.low, k) {
			sess.Phase = types.PhaseIdle
			return DialogResult{Reply: types.NewReply(troubleshootText)}, true
		}
	}

	if warrantyRe.MatchString(in.low) {
		return DialogResult{Reply: types.NewReply(warrantyText)}, true
	}
	if includeSolarRe.MatchString(in.low) {
		return DialogResult{Reply: types.NewReply(solarIncludeText)}, true
	}
	if solarRe.MatchString(in.low) {
		return DialogResult{Reply: types.NewReply(solarText)}, true
	}
	if chicksRe.MatchString(in.low) {
		return DialogResult{Reply: types.NewReply(chicksText)}, true
	}
	if payRe.MatchString(in.low) {
		return DialogResult{Reply: types.NewReply(paymentText)}, true
	}

	if d.cfg.ZoneShortcutEnabled {
		if zone, ok := d.zones.Match(in.text); ok {
			sess.LastDeliveryZone = zone
			sess.LastEtaLabel = d.zones.EtaLabel(zone)
			if sess.LastViewedItem != nil {
				sess.Phase = types.PhaseAwaitName
				return DialogResult{Reply: types.NewReply(zoneAckCheckoutText(zone, sess.LastEtaLabel))}, true
			}
			sess.Phase = types.PhaseIdle
			return DialogResult{Reply: types.NewReply(zoneAckInquiryText(zone, sess.LastEtaLabel))}, true
		}
	}

	return DialogResult{}, false
}

// ---------- rule 5: fallback ----------

func (d *dialogService) ruleFallback(in inbound, sess *types.Session) (DialogResult, bool) {
	sess.Phase = types.PhaseIdle
	return DialogResult{Reply: d.menuReply(fallbackText)}, true
}

// ---------- shared reply builders ----------

func (d *dialogService) welcomeReply() types.Reply {
	text := welcomeText
	if d.isAfterHours() {
		text += "\n\n⏰ " + afterHoursNote
	}
	return types.NewReply(text).WithOptions(menuButtons...)
}

func (d *dialogService) menuReply(text string) types.Reply {
	return types.NewReply(text).WithOptions(menuButtons...)
}

func (d *dialogService) pageReply(sess *types.Session) types.Reply {
	items, page, total := d.catalog.Page(sess.Category, sess.PageCursor, d.cfg.PageSize)
	sess.PageCursor = page
	return types.NewReply(pricePageText(sess.Category, items, page, total))
}

func (d *dialogService) itemDetailReply(item types.Item) types.Reply {
	reply := types.NewReply(itemDetailText(item))
	if item.ImageURL != "" {
		reply = reply.WithImage(item.ImageURL, itemCaption(item))
	}
	return reply
}

func (d *dialogService) summaryReply(sess *types.Session) types.Reply {
	return types.NewReply(summaryText(sess)).WithOptions(confirmButtons...)
}

func (d *dialogService) confirm(sess *types.Session) DialogResult {
	order, err := d.orders.Assemble(sess)
	if err != nil {
		d.log.Error("Order assembly failed", "customer_id", sess.CustomerID, "error", err)
		return DialogResult{Reply: d.summaryReply(sess)}
	}
	sess.Reset()
	return DialogResult{Reply: types.NewReply(confirmedText(order.ID)), Order: &order}
}

// standingPrompt re-issues whatever question the current phase is
// waiting on, used when a cancellation is abandoned.
func (d *dialogService) standingPrompt(sess *types.Session) types.Reply {
	switch sess.Phase {
	case types.PhaseAwaitZone:
		return types.NewReply(zonePromptText)
	case types.PhaseAwaitName:
		return types.NewReply(namePromptText)
	case types.PhaseAwaitPhone:
		return types.NewReply(askPhoneText(sess.CustomerName))
	case types.PhaseAwaitConfirm:
		return d.summaryReply(sess)
	case types.PhaseEditMenu:
		return types.NewReply(editMenuText)
	case types.PhaseEditName:
		return types.NewReply(editNamePromptText)
	case types.PhaseEditPhone:
		return types.NewReply(editPhonePromptText)
	case types.PhaseEditZone:
		return types.NewReply(editZonePromptText)
	case types.PhaseEditItem, types.PhaseBrowsing:
		return d.pageReply(sess)
	default:
		return d.welcomeReply()
	}
}

func (d *dialogService) pickItem(in inbound, sess *types.Session) (types.Item, bool) {
	m := capacityRe.FindString(in.low)
	if m == "" {
		return types.Item{}, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return types.Item{}, false
	}
	return d.catalog.FindByCapacity(sess.Category, n)
}

// isAfterHours reports whether the shop is closed: open 06:00 to 23:00
// East Africa Time.
func (d *dialogService) isAfterHours() bool {
	eatHour := (d.now().UTC().Hour() + 3) % 24
	return !(eatHour >= 6 && eatHour < 23)
}

func normalizeName(text string) (string, bool) {
	name := strings.TrimSpace(text)
	if len([]rune(name)) < 2 {
		return "", false
	}
	return name, true
}

// normalizePhone strips everything but digits, keeping a leading plus.
// Nine digits is the floor (Kenyan numbers without the leading zero).
func normalizePhone(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() < 9 {
		return "", false
	}
	out := digits.String()
	if strings.HasPrefix(trimmed, "+") {
		out = "+" + out
	}
	return out, true
}
