package services

import (
	"fmt"
	"strings"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
)

const (
	businessName   = "Neochicks Poultry Ltd."
	callLine       = "0707787884"
	chicksCallLine = "0793585968"
	paymentNote    = "Pay on delivery"
	afterHoursNote = "We are currently off till early morning."
)

var welcomeText = "🐣 Karibu *Neochicks Ltd.*\n" +
	"The leading incubators supplier in Kenya and East Africa.\n" +
	"Click one of the options below and I will answer you:\n\n" +
	"☎️ " + callLine

var menuButtons = []string{
	"Capacities with Prices 💰📦",
	"Delivery Terms 🚚",
	"Troubleshoot my incubators 🛠️",
	"Talk to an Agent 👩🏽‍💼",
}

const fallbackText = "Got it! Tap *Capacities with Prices*, *Delivery Terms*, " +
	"*Troubleshoot my incubators*, or *Talk to an Agent*."

const agentText = "👩🏽‍💼 Connecting you to a Neochicks rep… You can also call " + callLine + "."

const troubleshootText = "🛠️ Quick checks:\n" +
	"1) Temp 37.5°C (±0.2)\n" +
	"2) Humidity 45–55% set / 65% hatch\n" +
	"3) Turning 3–5×/day (auto OK)\n" +
	"4) Candle day 7 & 14; remove clears\n" +
	"5) Ventilation okay (no drafts)\n\n" +
	"Still low hatch rate? Type *Talk to an Agent* and our tech will help."

const warrantyText = "✅ 12-month warranty + free setup guidance. We also connect you " +
	"to our technician from your nearest town."

const solarText = "🔋 Solar panels + battery available (sized per model). We assist to " +
	"outsource solar packages depending on your incubator power rating."

const chicksText = "🐥 Improved Kienyeji chicks available — 3 days old up to 2 months old. " +
	"Call: " + chicksCallLine + "."

const paymentText = "💳 Any mode of payment acceptable. " + paymentNote + "."

const solarIncludeText = "ℹ️ Prices do not include solar panels. We guide you to get the " +
	"best solar/battery package for your incubator."

const deliveryTermsText = "🚚 Delivery terms: Nairobi → same day; other counties → 24 hours. " +
	paymentNote + ".\nWhich *county* are you in?"

const zonePromptText = "Please type your *county* name (e.g., Nairobi, Nakuru, Mombasa)."

const namePromptText = "Please share the *name* to put on the order (at least 2 characters)."

const phonePromptText = "That number looks too short. Please send a *phone number* with " +
	"at least 9 digits (e.g., 0712345678)."

const editMenuText = "✏️ What should we change?\n" +
	"1) Name\n" +
	"2) Phone\n" +
	"3) County\n" +
	"4) Item\n\n" +
	"Reply with a number (1-4)."

const editNamePromptText = "Type the new *name*:"

const editPhonePromptText = "Type the new *phone number*:"

const editZonePromptText = "Which *county* should we deliver to?"

const cancelAskText = "❌ Cancel this order? Reply *yes* to cancel or *no* to keep going."

const cancelledText = "🗑️ Order cancelled. Karibu tena!"

var confirmButtons = []string{"Confirm", "Edit", "Cancel"}

var cancelButtons = []string{"Yes", "No"}

func categoryHeading(cat types.Category) string {
	switch cat {
	case types.CategoryChicks:
		return "🐥 *Improved Kienyeji Chicks*"
	case types.CategoryCages:
		return "🏗️ *Layer Cages*"
	default:
		return "🐣 *Capacities with Prices*"
	}
}

func categoryUnit(cat types.Category) string {
	switch cat {
	case types.CategoryChicks:
		return "chicks"
	case types.CategoryCages:
		return "birds"
	default:
		return "eggs"
	}
}

func productLine(it types.Item) string {
	tag := ""
	if it.Solar {
		tag = " (Solar)"
	}
	gen := ""
	if it.FreeGen {
		gen = " + *Free Backup Generator*"
	}
	return fmt.Sprintf("- %s%s — %d %s → %s%s",
		it.Name, tag, it.Capacity, categoryUnit(it.Category), types.FormatKSh(it.Price), gen)
}

func pricePageText(cat types.Category, items []types.Item, page, totalPages int) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, productLine(it))
	}
	footer := fmt.Sprintf("\nPage %d/%d. Type *next*/*back* to browse, or type a "+
		"*capacity number* (e.g., 204 or 528).", page, totalPages)
	return categoryHeading(cat) + "\n" + strings.Join(lines, "\n") + footer
}

func itemDetailText(it types.Item) string {
	tag := ""
	if it.Solar {
		tag = " (Solar)"
	}
	gen := ""
	if it.FreeGen {
		gen = "\n🎁 Includes *Free Backup Generator*"
	}
	return fmt.Sprintf("📦 *%s*%s\nCapacity: %d %s\nPrice: %s%s\n\n"+
		"Reply with your *county* for delivery ETA and quote. %s.",
		it.Name, tag, it.Capacity, categoryUnit(it.Category), types.FormatKSh(it.Price), gen, paymentNote)
}

func itemCaption(it types.Item) string {
	return fmt.Sprintf("%s — %s", it.Name, types.FormatKSh(it.Price))
}

func zoneAckCheckoutText(zone, eta string) string {
	return fmt.Sprintf("📍 %s → Typical delivery %s. %s.\nWhat *name* should go on the order?",
		titleCase(zone), eta, paymentNote)
}

func zoneAckInquiryText(zone, eta string) string {
	return fmt.Sprintf("📍 %s → Typical delivery %s. %s.\nNeed a recommendation or pro-forma invoice?",
		titleCase(zone), eta, paymentNote)
}

func askPhoneText(name string) string {
	return fmt.Sprintf("Asante %s! Which *phone number* should we use? (e.g., 0712345678)", name)
}

func summaryText(sess *types.Session) string {
	it := sess.LastViewedItem
	return fmt.Sprintf("🧾 *Order Summary*\n"+
		"Item: %s (%d %s)\n"+
		"Price: %s\n"+
		"Name: %s\n"+
		"Phone: %s\n"+
		"County: %s\n"+
		"Delivery: %s. %s.\n\n"+
		"Reply *confirm* to place your order.",
		it.Name, it.Capacity, categoryUnit(it.Category), types.FormatKSh(it.Price),
		sess.CustomerName, sess.CustomerPhone, titleCase(sess.LastDeliveryZone),
		sess.LastEtaLabel, paymentNote)
}

func confirmedText(orderID string) string {
	return fmt.Sprintf("✅ Order *%s* placed! Your pro-forma invoice is on the way. "+
		"Asante for choosing Neochicks!", orderID)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
