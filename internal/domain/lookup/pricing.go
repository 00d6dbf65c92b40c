package lookup

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// SourceType identifies the kind of identifier a lookup is anchored on
type SourceType string

const (
	SourceIMEI        SourceType = "imei"
	SourcePhoneNumber SourceType = "phoneNumber"
)

// IsValid checks if the source type is known
func (s SourceType) IsValid() bool {
	return s == SourceIMEI || s == SourcePhoneNumber
}

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// ServiceKey is a priced unit of lookup work
type ServiceKey string

const (
	ServiceIMEIToNumber            ServiceKey = "imeiToNumber"
	ServiceNumberToLocation        ServiceKey = "numberToLocation"
	ServiceNumberToNID             ServiceKey = "numberToNID"
	ServiceNumberToCallList3Months ServiceKey = "numberToCallList3Months"
	ServiceNumberToCallList6Months ServiceKey = "numberToCallList6Months"
)

// String returns the string representation of ServiceKey
func (k ServiceKey) String() string {
	return string(k)
}

// DataCategory is the customer-facing label for a result type.
// Each priced service key maps to exactly one category.
type DataCategory string

const (
	CategoryNumber          DataCategory = "number"
	CategoryLocation        DataCategory = "location"
	CategoryNID             DataCategory = "nid"
	CategoryCallList3Months DataCategory = "calllist3months"
	CategoryCallList6Months DataCategory = "calllist6months"
)

// IsValid checks if the category is known
func (c DataCategory) IsValid() bool {
	switch c {
	case CategoryNumber, CategoryLocation, CategoryNID, CategoryCallList3Months, CategoryCallList6Months:
		return true
	}
	return false
}

// String returns the string representation of DataCategory
func (c DataCategory) String() string {
	return string(c)
}

// priceTable maps service keys to their fixed price in whole taka.
// Prices apply at submission time only; existing requests keep the
// charge they were created with.
var priceTable = map[ServiceKey]int64{
	ServiceIMEIToNumber:            1500,
	ServiceNumberToLocation:        1000,
	ServiceNumberToNID:             800,
	ServiceNumberToCallList3Months: 2000,
	ServiceNumberToCallList6Months: 3500,
}

// PriceOf returns the price of a service key in whole taka.
// The second return value is false for unknown keys.
func PriceOf(key ServiceKey) (int64, bool) {
	p, ok := priceTable[key]
	return p, ok
}

// Prices returns a copy of the full price table
func Prices() map[ServiceKey]int64 {
	out := make(map[ServiceKey]int64, len(priceTable))
	for k, v := range priceTable {
		out[k] = v
	}
	return out
}

// ComputeCharge sums the prices of the given service keys.
// Returns an error for any unknown key.
func ComputeCharge(keys []ServiceKey) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, k := range keys {
		p, ok := priceTable[k]
		if !ok {
			return decimal.Zero, fmt.Errorf("unknown service key: %s", k)
		}
		total = total.Add(decimal.NewFromInt(p))
	}
	return total, nil
}

// CategoryOf maps a service key to the data category it produces.
// Non-base keys follow the "strip numberTo prefix, lower-case" rule.
func CategoryOf(key ServiceKey) (DataCategory, bool) {
	if key == ServiceIMEIToNumber {
		return CategoryNumber, true
	}
	rest, ok := strings.CutPrefix(string(key), "numberTo")
	if !ok || rest == "" {
		return "", false
	}
	c := DataCategory(strings.ToLower(rest))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

var phoneNumberPattern = regexp.MustCompile(`^01[3-9]\d{8}$`)

// IsValidPhoneNumber reports whether s is a valid Bangladeshi mobile
// number: 11 digits, starting with 01, third digit 3 through 9.
func IsValidPhoneNumber(s string) bool {
	return phoneNumberPattern.MatchString(s)
}

var imeiPattern = regexp.MustCompile(`^\d{15}$`)

// IsValidIMEI reports whether s is a 15-digit IMEI
func IsValidIMEI(s string) bool {
	return imeiPattern.MatchString(s)
}

// ServiceKeyList is a set of service keys stored as a JSON array column
type ServiceKeyList []ServiceKey

// Value implements driver.Valuer for database storage
func (l ServiceKeyList) Value() (driver.Value, error) {
	if l == nil {
		l = ServiceKeyList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *ServiceKeyList) Scan(value any) error {
	return scanJSONList(value, l, "ServiceKeyList")
}

// Contains reports whether the list contains the given key
func (l ServiceKeyList) Contains(key ServiceKey) bool {
	for _, k := range l {
		if k == key {
			return true
		}
	}
	return false
}

// CategoryList is a set of data categories stored as a JSON array column
type CategoryList []DataCategory

// Value implements driver.Valuer for database storage
func (l CategoryList) Value() (driver.Value, error) {
	if l == nil {
		l = CategoryList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *CategoryList) Scan(value any) error {
	return scanJSONList(value, l, "CategoryList")
}

// Contains reports whether the list contains the given category
func (l CategoryList) Contains(c DataCategory) bool {
	for _, v := range l {
		if v == c {
			return true
		}
	}
	return false
}

func scanJSONList(value, dest any, typeName string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
