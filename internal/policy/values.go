package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/policykit/policyconv/internal/criteria"
	"github.com/policykit/policyconv/internal/models"
)

// compoundDelimiter joins sub-values on the wire
const compoundDelimiter = "="

// defaultComparison is implied when a numeric value has no operator
const defaultComparison = "="

// comparisonPattern splits "<op><junk><number|severity>"
var comparisonPattern = regexp.MustCompile(`^([><=]+)?\D*(\d+(?:\.\d*)?|\.\d+|UNKNOWN|LOW|MODERATE|IMPORTANT|CRITICAL)$`)

// DecodeError is returned for a numeric comparison value that does not
// match the comparison pattern
type DecodeError struct {
	Field string
	Value string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("criterion %q: cannot parse comparison value %q", e.Field, e.Value)
}

// Codec encodes and decodes criterion values using a field table
type Codec struct {
	table *criteria.Table
}

// NewCodec for table; nil selects the embedded table
func NewCodec(table *criteria.Table) *Codec {
	if table == nil {
		table = criteria.Default()
	}
	return &Codec{table: table}
}

var defaultCodec = NewCodec(nil)

// ParseValueStr decodes one wire value. Unparseable comparison values are
// kept verbatim as {key: "=", value: raw}.
func ParseValueStr(raw, fieldName string) models.ValueObj {
	v, _ := defaultCodec.Decode(raw, fieldName)
	return v
}

// DecodeValue is ParseValueStr that also reports unparseable comparisons
func DecodeValue(raw, fieldName string) (models.ValueObj, error) {
	return defaultCodec.Decode(raw, fieldName)
}

// FormatValueStr encodes one decoded value for the wire
func FormatValueStr(v models.ValueObj, fieldName string) string {
	return defaultCodec.Encode(v, fieldName)
}

// Decode one wire value
func (c *Codec) Decode(raw, fieldName string) (models.ValueObj, error) {
	switch cat := c.table.Category(fieldName); cat {
	case criteria.Numeric:
		m := comparisonPattern.FindStringSubmatch(raw)
		if m == nil {
			return models.KeyValue(defaultComparison, raw), &DecodeError{Field: fieldName, Value: raw}
		}
		op := m[1]
		if op == "" {
			op = defaultComparison
		}
		return models.KeyValue(op, m[2]), nil

	case criteria.Compound, criteria.EnvironmentVariable:
		if !strings.Contains(raw, compoundDelimiter) {
			break
		}
		parts := strings.Split(raw, compoundDelimiter)
		if cat == criteria.EnvironmentVariable {
			return models.SourceKeyValue(parts[0], parts[1], strings.Join(parts[2:], compoundDelimiter)), nil
		}
		return models.KeyValue(parts[0], strings.Join(parts[1:], compoundDelimiter)), nil
	}
	return models.PlainValue(raw), nil
}

// Encode one decoded value. Array values are joined with commas; use
// EncodeValues to explode them into separate wire values.
func (c *Codec) Encode(v models.ValueObj, fieldName string) string {
	if v.IsArray {
		return strings.Join(v.ArrayValue, ",")
	}

	cat := c.table.Category(fieldName)
	switch {
	case cat == criteria.Numeric:
		if key := v.KeyOr(defaultComparison); key != defaultComparison {
			return key + v.Value
		}
		return v.Value
	case v.Source != nil || cat == criteria.EnvironmentVariable:
		return v.SourceOr("") + compoundDelimiter + v.KeyOr("") + compoundDelimiter + v.Value
	case v.Key != nil:
		return *v.Key + compoundDelimiter + v.Value
	default:
		return v.Value
	}
}

// DecodeValues decodes a whole group. Image signing fields collapse into a
// single arrayValue record.
func (c *Codec) DecodeValues(fieldName string, values []models.PolicyValue) ([]models.ValueObj, []error) {
	if c.table.Category(fieldName) == criteria.ImageSigning {
		raw := make([]string, len(values))
		for i, v := range values {
			raw[i] = v.Value
		}
		return []models.ValueObj{models.ArrayValue(raw)}, nil
	}

	var errs []error
	out := make([]models.ValueObj, 0, len(values))
	for _, v := range values {
		decoded, err := c.Decode(v.Value, fieldName)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, decoded)
	}
	return out, errs
}

// EncodeValues encodes a whole group, exploding arrayValue records
func (c *Codec) EncodeValues(fieldName string, values []models.ValueObj) []models.PolicyValue {
	out := make([]models.PolicyValue, 0, len(values))
	for _, v := range values {
		if c.table.Category(fieldName) == criteria.ImageSigning && v.IsArray {
			for _, item := range v.ArrayValue {
				out = append(out, models.PolicyValue{Value: item})
			}
			continue
		}
		out = append(out, models.PolicyValue{Value: c.Encode(v, fieldName)})
	}
	return out
}
