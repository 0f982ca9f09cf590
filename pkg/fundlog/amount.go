package fundlog

import (
	"database/sql/driver"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount wraps decimal.Decimal for prices, percentages and portfolio values.
// It is stored as REAL in SQLite and marshaled as a plain JSON number.
type Amount struct {
	decimal.Decimal
}

// amountScale is the precision kept on the wire and in storage. Fund unit
// prices are published with six decimals.
const amountScale = 6

// MarshalJSON outputs a JSON number (not a string).
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(a.Float(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Scan implements sql.Scanner for REAL, INTEGER and TEXT columns.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		a.Decimal = decimal.Zero
		return nil
	case float64:
		a.Decimal = decimal.NewFromFloat(v)
		return nil
	case int64:
		a.Decimal = decimal.NewFromInt(v)
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	}
	return a.Decimal.Scan(src)
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.Float(), nil
}

// Float returns the amount rounded to the storage scale.
func (a Amount) Float() float64 {
	f, _ := a.Round(amountScale).Float64()
	return f
}

// NewAmount creates an Amount from a float64.
func NewAmount(f float64) Amount {
	return Amount{decimal.NewFromFloat(f)}
}
