// Package schema holds the static definitions of the six target record
// shapes the ingestion pipeline normalizes uploads into, plus the canonical
// coercion rules that turn raw spreadsheet cells into typed values.
package schema

import (
	"fmt"
	"sort"
)

// Kind is the semantic type of a schema field.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindDate       Kind = "date"
	KindEnum       Kind = "enum"
	KindStringList Kind = "string_list"
)

// DefaultPolicy describes what the fallback mapper substitutes when a
// required column cannot be located in the upload.
type DefaultPolicy string

const (
	// DefaultOmit leaves the field unset. Only valid for optional fields.
	DefaultOmit DefaultPolicy = "omit"
	// DefaultSentinel fills in FieldSpec.SentinelValue.
	DefaultSentinel DefaultPolicy = "sentinel"
	// DefaultNumber fills in FieldSpec.NumberValue.
	DefaultNumber DefaultPolicy = "number"
	// DefaultCounter fills in a per-file synthetic identifier sequence.
	DefaultCounter DefaultPolicy = "counter"
	// DefaultDateOffset fills in now + FieldSpec.OffsetDays days.
	DefaultDateOffset DefaultPolicy = "date_offset"
)

// FieldSpec describes one canonical field of a target schema.
//
// Validation bounds and default values are deliberately data here rather
// than literals inside the mapper or validator, so tuning a business
// heuristic (a 30-day lead time, a 1000-unit reorder) is a one-line edit.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool

	// Enum value set, exact match. Only for KindEnum.
	Enum []string

	// Numeric bounds, applied when the value is present.
	Min *float64
	Max *float64

	// Email marks a string field that must look like local@domain.tld.
	Email bool

	// Default policy for the fallback mapper.
	Default       DefaultPolicy
	SentinelValue string
	NumberValue   float64
	OffsetDays    int

	// Synonyms lists accepted original column headers, most specific
	// first. Matching is done on normalized forms (see Normalize).
	Synonyms []string
}

// Definition is one target record shape.
type Definition struct {
	Type   string
	Fields []FieldSpec
}

// Field returns the spec for a canonical field name, if declared.
func (d *Definition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Record is a mapped record: canonical field name to typed value. Values are
// one of string, float64, time.Time or []string after coercion. Records are
// provisional until the validator accepts them.
type Record map[string]interface{}

func fptr(v float64) *float64 { return &v }

var registry = map[string]*Definition{
	"products": {
		Type: "products",
		Fields: []FieldSpec{
			{
				Name: "name", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unnamed Product",
				Synonyms: []string{"Product Name", "Name", "Product", "Item", "Item Name", "Title"},
			},
			{
				Name: "sku", Kind: KindString, Required: true,
				Default:  DefaultCounter,
				Synonyms: []string{"SKU", "Product Code", "Item Code", "Code", "Item Number", "Part Number"},
			},
			{
				Name: "category", Kind: KindString, Required: false,
				Default:  DefaultOmit,
				Synonyms: []string{"Category", "Product Category", "Type", "Product Type"},
			},
			{
				Name: "unitCost", Kind: KindNumber, Required: true, Min: fptr(0),
				Default: DefaultNumber, NumberValue: 0,
				Synonyms: []string{"Unit Cost", "Cost", "Unit Price", "Price", "Cost Per Unit"},
			},
			{
				Name: "quantity", Kind: KindNumber, Required: true, Min: fptr(1),
				Default: DefaultNumber, NumberValue: 1000,
				Synonyms: []string{"Quantity", "Qty", "Stock", "Units", "Order Quantity", "Amount"},
			},
			{
				Name: "leadTimeDays", Kind: KindNumber, Required: false, Min: fptr(0),
				Default: DefaultNumber, NumberValue: 30,
				Synonyms: []string{"Lead Time", "Lead Time Days", "Lead Time (Days)", "Delivery Time"},
			},
			{
				Name: "tags", Kind: KindStringList, Required: false,
				Default:  DefaultOmit,
				Synonyms: []string{"Tags", "Labels", "Keywords"},
			},
		},
	},
	"suppliers": {
		Type: "suppliers",
		Fields: []FieldSpec{
			{
				Name: "name", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unknown Supplier",
				Synonyms: []string{"Supplier Name", "Name", "Supplier", "Vendor", "Vendor Name", "Company"},
			},
			{
				Name: "contactEmail", Kind: KindString, Required: true, Email: true,
				Default:  DefaultSentinel, SentinelValue: "unknown@example.com",
				Synonyms: []string{"Contact Email", "Email", "E-mail", "Email Address", "Contact"},
			},
			{
				Name: "phone", Kind: KindString, Required: false,
				Default:  DefaultOmit,
				Synonyms: []string{"Phone", "Phone Number", "Telephone", "Contact Phone"},
			},
			{
				Name: "origin", Kind: KindString, Required: false,
				Default:  DefaultOmit,
				Synonyms: []string{"Origin", "Country", "Country Of Origin", "Location", "Region"},
			},
			{
				Name: "rating", Kind: KindNumber, Required: false, Min: fptr(0), Max: fptr(5),
				Default:  DefaultOmit,
				Synonyms: []string{"Rating", "Score", "Supplier Rating", "Performance"},
			},
			{
				Name: "leadTimeDays", Kind: KindNumber, Required: true, Min: fptr(0),
				Default: DefaultNumber, NumberValue: 30,
				Synonyms: []string{"Lead Time", "Lead Time Days", "Lead Time (Days)", "Avg Lead Time"},
			},
			{
				Name: "materials", Kind: KindStringList, Required: false,
				Default:  DefaultOmit,
				Synonyms: []string{"Materials", "Products Supplied", "Supplies", "Items"},
			},
		},
	},
	"factories": {
		Type: "factories",
		Fields: []FieldSpec{
			{
				Name: "name", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unnamed Factory",
				Synonyms: []string{"Factory Name", "Name", "Factory", "Plant", "Plant Name", "Site"},
			},
			{
				Name: "location", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unknown",
				Synonyms: []string{"Location", "City", "Address", "Country", "Site Location"},
			},
			{
				Name: "capacity", Kind: KindNumber, Required: true, Min: fptr(0),
				Default: DefaultNumber, NumberValue: 0,
				Synonyms: []string{"Capacity", "Production Capacity", "Max Output", "Output"},
			},
			{
				Name: "utilization", Kind: KindNumber, Required: false, Min: fptr(0), Max: fptr(100),
				Default:  DefaultOmit,
				Synonyms: []string{"Utilization", "Utilisation", "Usage", "Capacity Used", "Load"},
			},
			{
				Name: "contactEmail", Kind: KindString, Required: false, Email: true,
				Default:  DefaultOmit,
				Synonyms: []string{"Contact Email", "Email", "Manager Email"},
			},
			{
				Name: "certifications", Kind: KindStringList, Required: false,
				Default:  DefaultOmit,
				Synonyms: []string{"Certifications", "Certificates", "Compliance", "Standards"},
			},
		},
	},
	"warehouses": {
		Type: "warehouses",
		Fields: []FieldSpec{
			{
				Name: "name", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unnamed Warehouse",
				Synonyms: []string{"Warehouse Name", "Name", "Warehouse", "Depot", "Facility"},
			},
			{
				Name: "location", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unknown",
				Synonyms: []string{"Location", "City", "Address", "Country", "Region"},
			},
			{
				Name: "capacity", Kind: KindNumber, Required: true, Min: fptr(0),
				Default: DefaultNumber, NumberValue: 0,
				Synonyms: []string{"Capacity", "Storage Capacity", "Max Capacity", "Volume"},
			},
			{
				Name: "currentStock", Kind: KindNumber, Required: true, Min: fptr(0),
				Default: DefaultNumber, NumberValue: 0,
				Synonyms: []string{"Current Stock", "Stock", "Inventory", "Stock Level", "On Hand"},
			},
			{
				Name: "managerEmail", Kind: KindString, Required: false, Email: true,
				Default:  DefaultOmit,
				Synonyms: []string{"Manager Email", "Email", "Contact Email", "Contact"},
			},
			{
				Name: "operatingCost", Kind: KindNumber, Required: false, Min: fptr(0),
				Default:  DefaultOmit,
				Synonyms: []string{"Operating Cost", "Cost", "Monthly Cost", "Opex"},
			},
		},
	},
	"retailers": {
		Type: "retailers",
		Fields: []FieldSpec{
			{
				Name: "name", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unnamed Retailer",
				Synonyms: []string{"Retailer Name", "Name", "Retailer", "Store", "Store Name", "Customer"},
			},
			{
				Name: "channel", Kind: KindEnum, Required: true,
				Enum:    []string{"Online", "Store", "Wholesale"},
				Default: DefaultSentinel, SentinelValue: "Store",
				Synonyms: []string{"Channel", "Sales Channel", "Type", "Store Type"},
			},
			{
				Name: "location", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unknown",
				Synonyms: []string{"Location", "City", "Address", "Country", "Region"},
			},
			{
				Name: "contactEmail", Kind: KindString, Required: false, Email: true,
				Default:  DefaultOmit,
				Synonyms: []string{"Contact Email", "Email", "E-mail", "Contact"},
			},
			{
				Name: "monthlySales", Kind: KindNumber, Required: false, Min: fptr(0),
				Default:  DefaultOmit,
				Synonyms: []string{"Monthly Sales", "Sales", "Revenue", "Turnover"},
			},
		},
	},
	"shipments": {
		Type: "shipments",
		Fields: []FieldSpec{
			{
				Name: "reference", Kind: KindString, Required: true,
				Default:  DefaultCounter,
				Synonyms: []string{"Reference", "Shipment ID", "Shipment Number", "Order ID", "Order Number", "ID"},
			},
			{
				Name: "origin", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unknown",
				Synonyms: []string{"Origin", "From", "Source", "Ship From", "Departure"},
			},
			{
				Name: "destination", Kind: KindString, Required: true,
				Default:  DefaultSentinel, SentinelValue: "Unknown",
				Synonyms: []string{"Destination", "To", "Ship To", "Arrival", "Delivery Location"},
			},
			{
				Name: "status", Kind: KindEnum, Required: true,
				Enum:    []string{"On-Time", "Delayed", "Stuck", "Delivered"},
				Default: DefaultSentinel, SentinelValue: "On-Time",
				Synonyms: []string{"Status", "Shipment Status", "State", "Delivery Status"},
			},
			{
				Name: "quantity", Kind: KindNumber, Required: true, Min: fptr(1),
				Default: DefaultNumber, NumberValue: 1,
				Synonyms: []string{"Quantity", "Qty", "Units", "Items", "Amount"},
			},
			{
				Name: "expectedDelivery", Kind: KindDate, Required: true,
				Default: DefaultDateOffset, OffsetDays: 7,
				Synonyms: []string{"Expected Delivery", "ETA", "Delivery Date", "Expected Date", "Arrival Date"},
			},
			{
				Name: "carrier", Kind: KindString, Required: false,
				Default:  DefaultOmit,
				Synonyms: []string{"Carrier", "Shipping Company", "Courier", "Freight Company"},
			},
		},
	},
}

// Lookup returns the definition for a schema type label.
func Lookup(schemaType string) (*Definition, error) {
	def, ok := registry[schemaType]
	if !ok {
		return nil, fmt.Errorf("unknown schema type %q (known: %v)", schemaType, Types())
	}
	return def, nil
}

// Types lists the registered schema type labels in sorted order.
func Types() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
