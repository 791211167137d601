// Package rules contains the per-category validation rules and the note-based
// category override table. Each rule consumes a transaction, its parser
// outputs and the matched order (if any), and produces a flag plus a
// human-readable explanation for the dashboard.
package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/pos-cash-recon/internal/domain/order"
	"github.com/pos-cash-recon/internal/domain/transaction"
)

// Canonical local category names. Vietnamese, as they appear on the dashboard.
const (
	CategoryShipping              = "Tiền ship"
	CategoryShippingFromWarehouse = "Tiền ship từ kho"
	CategoryShippingFromKitchen   = "Tiền ship từ bếp"
	CategoryIcePurchase           = "Tiền mua đá"
)

// Shipping rule thresholds: a nearby delivery is only reimbursable when the
// order is big enough, unless the order was settled through the QR wallet.
const (
	MaxShippingDistanceKm  = 3.0
	MinShippingOrderAmount = 199000
	QRWalletMethodID       = "QR_CODE" // Upstream payment method ID for QR-wallet settlements
)

// Ice purchase pricing: fixed unit price per packet, 10% tolerance against
// the booked amount.
const (
	IcePacketUnitPrice = 7000
	IcePriceTolerance  = 0.10
)

// Override maps a note marker to a fixed local category name. Overridden
// categories are local concepts: the upstream profession UID is discarded.
type Override struct {
	Marker string // Case-insensitive substring looked up in the note
	Name   string
}

// noteOverrides is evaluated in priority order; the first marker found wins.
var noteOverrides = []Override{
	{Marker: "quân", Name: CategoryShippingFromWarehouse}, // The warehouse courier, by name
	{Marker: "bếp", Name: CategoryShippingFromKitchen},
	{Marker: "mua đá", Name: CategoryIcePurchase},
}

// ResolveCategoryName applies the note-based override table to the raw
// upstream profession name. It returns the effective category name and
// whether an override fired; when one did, the caller must treat the
// upstream profession UID as absent.
func ResolveCategoryName(note, upstreamName string) (string, bool) {
	lower := strings.ToLower(note)
	for _, ov := range noteOverrides {
		if strings.Contains(lower, ov.Marker) {
			return ov.Name, true
		}
	}
	return upstreamName, false
}

// IsShippingCategory reports whether the shipping validation rule applies to
// the category. The whole "Tiền ship" family counts, so note-overridden
// warehouse/kitchen shipping is validated the same way as the upstream
// shipping profession.
func IsShippingCategory(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(CategoryShipping))
}

// IsIceCategory reports whether the ice purchase rule applies.
func IsIceCategory(name string) bool {
	return strings.EqualFold(name, CategoryIcePurchase)
}

// EvaluateShipping decides the flag for a shipping-family transaction.
// code is the order code extracted from the note ("" when none was found),
// matched is the snapshot order the code resolved to (nil when unresolved),
// and distanceKm/hasDistance carry the parsed delivery distance.
func EvaluateShipping(code string, matched *order.Order, distanceKm float64, hasDistance bool) (transaction.Flag, string) {
	if code == "" {
		return transaction.FlagReview, "order code not found in transfer content"
	}
	if matched == nil {
		return transaction.FlagInvalid, fmt.Sprintf("order %s not found in this time window", code)
	}

	if matched.PaymentMethodID == QRWalletMethodID {
		return transaction.FlagValid, fmt.Sprintf("order %s matched, paid via QR wallet", code)
	}

	if hasDistance && distanceKm <= MaxShippingDistanceKm && matched.PaymentAmount > MinShippingOrderAmount {
		return transaction.FlagValid, fmt.Sprintf(
			"order %s matched, distance %.2fkm within %.0fkm and order amount %d above %d",
			code, distanceKm, MaxShippingDistanceKm, matched.PaymentAmount, MinShippingOrderAmount,
		)
	}

	var failures []string
	if !hasDistance {
		failures = append(failures, "no distance found in note")
	} else if distanceKm > MaxShippingDistanceKm {
		failures = append(failures, fmt.Sprintf("distance %.2fkm exceeds %.0fkm", distanceKm, MaxShippingDistanceKm))
	}
	if matched.PaymentAmount <= MinShippingOrderAmount {
		failures = append(failures, fmt.Sprintf("order amount %d not above %d", matched.PaymentAmount, MinShippingOrderAmount))
	}
	failures = append(failures, "payment method is not the QR wallet")

	return transaction.FlagInvalid, fmt.Sprintf("order %s matched but %s", code, strings.Join(failures, ", "))
}

// EvaluateIce decides the flag for an ice purchase: the booked amount must be
// within tolerance of packetCount times the fixed unit price. packetCount of
// zero means no quantity could be parsed from the note.
func EvaluateIce(amount int64, packetCount int) (transaction.Flag, string) {
	if packetCount <= 0 {
		return transaction.FlagInvalid, "quantity not found in content"
	}

	expected := int64(packetCount) * IcePacketUnitPrice
	diff := math.Abs(float64(amount-expected)) / float64(expected)
	if diff <= IcePriceTolerance {
		return transaction.FlagValid, fmt.Sprintf("%d packets at %d each, amount %d matches expected %d", packetCount, IcePacketUnitPrice, amount, expected)
	}

	return transaction.FlagInvalid, fmt.Sprintf(
		"%d packets at %d each, amount %d differs from expected %d by %.0f%%",
		packetCount, IcePacketUnitPrice, amount, expected, diff*100,
	)
}

// FallbackExplanation is used when the order-suffix scan reclassifies an
// uncategorized transaction into the shipping category.
func FallbackExplanation(suffix string) string {
	return fmt.Sprintf("note references order suffix %s", suffix)
}
