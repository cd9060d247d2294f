package validate

import (
	"strings"
	"testing"
	"time"

	"supplysight/pkg/core/schema"
)

func mustLookup(t *testing.T, schemaType string) *schema.Definition {
	t.Helper()
	def, err := schema.Lookup(schemaType)
	if err != nil {
		t.Fatalf("lookup %s: %v", schemaType, err)
	}
	return def
}

func TestCheckAcceptsCompleteRecord(t *testing.T) {
	def := mustLookup(t, "products")
	rec := schema.Record{
		"name":     "Widget",
		"sku":      "W-1",
		"unitCost": 12.5,
		"quantity": float64(5),
	}
	res := Check(def, rec)
	if !res.OK {
		t.Fatalf("expected OK, got reasons %v", res.Reasons)
	}
}

func TestCheckCollectsAllViolations(t *testing.T) {
	def := mustLookup(t, "products")
	// Missing name and sku both, plus a negative cost: three distinct reasons.
	rec := schema.Record{
		"unitCost": -2.0,
		"quantity": float64(5),
	}
	res := Check(def, rec)
	if res.OK {
		t.Fatal("expected rejection")
	}
	if len(res.Reasons) < 3 {
		t.Fatalf("expected at least 3 reasons, got %v", res.Reasons)
	}
	assertReason(t, res.Reasons, "name: required, missing")
	assertReason(t, res.Reasons, "sku: required, missing")
	assertReason(t, res.Reasons, "unitCost")
}

func TestCheckEmptyRequiredString(t *testing.T) {
	def := mustLookup(t, "products")
	rec := schema.Record{
		"name":     "",
		"sku":      "W-2",
		"unitCost": 3.0,
		"quantity": float64(2),
	}
	res := Check(def, rec)
	if res.OK {
		t.Fatal("expected rejection")
	}
	assertReason(t, res.Reasons, "name: required, empty")
}

func TestCheckOptionalFieldAbsentIsFine(t *testing.T) {
	def := mustLookup(t, "suppliers")
	rec := schema.Record{
		"name":         "Acme",
		"contactEmail": "ops@acme.example",
		"leadTimeDays": float64(14),
	}
	res := Check(def, rec)
	if !res.OK {
		t.Fatalf("expected OK without rating, got %v", res.Reasons)
	}
}

func TestCheckNumericBounds(t *testing.T) {
	def := mustLookup(t, "suppliers")
	rec := schema.Record{
		"name":         "Acme",
		"contactEmail": "ops@acme.example",
		"leadTimeDays": float64(14),
		"rating":       7.0,
	}
	res := Check(def, rec)
	if res.OK {
		t.Fatal("expected rejection for rating above maximum")
	}
	assertReason(t, res.Reasons, "rating: 7 is above maximum 5")
}

func TestCheckEnumExactMatch(t *testing.T) {
	def := mustLookup(t, "shipments")
	base := func() schema.Record {
		return schema.Record{
			"reference":        "SH-1",
			"origin":           "Shanghai",
			"destination":      "Rotterdam",
			"quantity":         float64(100),
			"expectedDelivery": time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		}
	}

	rec := base()
	rec["status"] = "On-Time"
	if res := Check(def, rec); !res.OK {
		t.Fatalf("expected OK, got %v", res.Reasons)
	}

	rec = base()
	rec["status"] = "on-time"
	res := Check(def, rec)
	if res.OK {
		t.Fatal("enum matching must be exact, lowercase variant should fail")
	}
	assertReason(t, res.Reasons, "status")
}

func TestCheckEmail(t *testing.T) {
	def := mustLookup(t, "suppliers")
	rec := schema.Record{
		"name":         "Acme",
		"contactEmail": "not-an-email",
		"leadTimeDays": float64(14),
	}
	res := Check(def, rec)
	if res.OK {
		t.Fatal("expected rejection for malformed email")
	}
	assertReason(t, res.Reasons, "contactEmail")
}

func TestCheckDateField(t *testing.T) {
	def := mustLookup(t, "shipments")
	rec := schema.Record{
		"reference":        "SH-1",
		"origin":           "A",
		"destination":      "B",
		"status":           "Delivered",
		"quantity":         float64(1),
		"expectedDelivery": "not a date",
	}
	res := Check(def, rec)
	if res.OK {
		t.Fatal("expected rejection for unparseable date")
	}
	assertReason(t, res.Reasons, "expectedDelivery")
}

func TestCheckDoesNotMutate(t *testing.T) {
	def := mustLookup(t, "products")
	rec := schema.Record{"unitCost": -1.0}
	Check(def, rec)
	if len(rec) != 1 {
		t.Errorf("record mutated: %v", rec)
	}
}

func assertReason(t *testing.T, reasons []string, substr string) {
	t.Helper()
	for _, r := range reasons {
		if strings.Contains(r, substr) {
			return
		}
	}
	t.Errorf("no reason containing %q in %v", substr, reasons)
}
