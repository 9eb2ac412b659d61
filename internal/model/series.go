package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DateField is the key holding the observation date in persisted records.
const DateField = "Date"

// Record is one normalized observation.
type Record struct {
	Date   string
	Fields map[string]float64
}

// Series is the normalized, ordered record sequence for one symbol.
// Columns keeps the field order of the provider response.
type Series struct {
	Symbol  string
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (s Series) Len() int { return len(s.Records) }

// FirstDate returns the date of the first record, or "" for an empty series.
func (s Series) FirstDate() string {
	if len(s.Records) == 0 {
		return ""
	}
	return s.Records[0].Date
}

// LastDate returns the date of the last record, or "" for an empty series.
func (s Series) LastDate() string {
	if len(s.Records) == 0 {
		return ""
	}
	return s.Records[len(s.Records)-1].Date
}

// ColumnName resolves a field name. An exact match wins; otherwise the first
// flattened composite column starting with name+"_" is used (e.g. "Close_AAPL").
func (s Series) ColumnName(name string) (string, bool) {
	for _, c := range s.Columns {
		if c == name {
			return c, true
		}
	}
	for _, c := range s.Columns {
		if strings.HasPrefix(c, name+"_") {
			return c, true
		}
	}
	return "", false
}

// Column returns the values of a field in record order.
// Missing values are NaN.
func (s Series) Column(name string) ([]float64, bool) {
	col, ok := s.ColumnName(name)
	if !ok {
		return nil, false
	}
	values := make([]float64, len(s.Records))
	for i, r := range s.Records {
		v, ok := r.Fields[col]
		if !ok {
			v = math.NaN()
		}
		values[i] = v
	}
	return values, true
}

// ToRaw converts the series back into provider form, one flat label per column.
func (s Series) ToRaw() *RawSeries {
	raw := &RawSeries{
		Symbol:  s.Symbol,
		Columns: make([]ColumnLabel, len(s.Columns)),
		Rows:    make([]RawRow, len(s.Records)),
	}
	for i, c := range s.Columns {
		raw.Columns[i] = ColumnLabel{c}
	}
	for i, r := range s.Records {
		values := make([]float64, len(s.Columns))
		for j, c := range s.Columns {
			v, ok := r.Fields[c]
			if !ok {
				v = math.NaN()
			}
			values[j] = v
		}
		raw.Rows[i] = RawRow{Date: r.Date, Values: values}
	}
	return raw
}

// MarshalJSON writes the series as a JSON array of flat objects.
// The date comes first, then one key per column; NaN and Inf become null.
func (s Series) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, r := range s.Records {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"` + DateField + `":`)
		date, err := json.Marshal(r.Date)
		if err != nil {
			return nil, err
		}
		b.Write(date)
		for _, c := range s.Columns {
			key, err := json.Marshal(c)
			if err != nil {
				return nil, err
			}
			b.WriteByte(',')
			b.Write(key)
			b.WriteByte(':')
			v, ok := r.Fields[c]
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				b.WriteString("null")
				continue
			}
			num, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			b.Write(num)
		}
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// UnmarshalJSON reads the array written by MarshalJSON, keeping the key
// order of the objects as column order. The symbol is left untouched.
func (s *Series) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return err
	}
	seen := make(map[string]bool)
	var columns []string
	var records []Record
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		rec := Record{Fields: make(map[string]float64)}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("series: unexpected key %v", tok)
			}
			val, err := dec.Token()
			if err != nil {
				return err
			}
			if key == DateField {
				date, ok := val.(string)
				if !ok {
					return fmt.Errorf("series: %s must be a string, got %v", DateField, val)
				}
				rec.Date = date
				continue
			}
			switch v := val.(type) {
			case json.Number:
				f, err := v.Float64()
				if err != nil {
					return fmt.Errorf("series: field %q: %w", key, err)
				}
				rec.Fields[key] = f
			case nil:
				rec.Fields[key] = math.NaN()
			default:
				return fmt.Errorf("series: field %q must be a number, got %v", key, val)
			}
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return err
	}
	s.Columns = columns
	s.Records = records
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("series: expected %q, got %v", want, tok)
	}
	return nil
}
