package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDelimiter(t *testing.T) {
	p := NewFieldParser(nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"comma", "a, b, c", ","},
		{"semicolon", "a; b; c", ";"},
		{"pipe", "a | b | c", "|"},
		{"newline", "a\nb\nc", "\n"},
		{"tab", "a\tb\tc", "\t"},
		{"semicolon beats single comma", "a; b; c, d", ";"},
		{"no delimiter defaults to comma", "single item", ","},
		{"empty defaults to comma", "", ","},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.DetectDelimiter(tt.text))
		})
	}
}

func TestParseTextField(t *testing.T) {
	p := NewFieldParser(nil)

	tests := []struct {
		name  string
		value interface{}
		want  []string
	}{
		{
			name:  "json array",
			value: `["Laptop Pro 15-inch", "Wireless Mouse"]`,
			want:  []string{"Laptop Pro 15-inch", "Wireless Mouse"},
		},
		{
			name:  "comma separated",
			value: "Item A, Item B, Item C",
			want:  []string{"Item A", "Item B", "Item C"},
		},
		{
			name:  "semicolon separated",
			value: "Item A; Item B",
			want:  []string{"Item A", "Item B"},
		},
		{
			name:  "pipe separated",
			value: "Item A | Item B",
			want:  []string{"Item A", "Item B"},
		},
		{
			name:  "quoted elements stripped",
			value: `"Item A", 'Item B'`,
			want:  []string{"Item A", "Item B"},
		},
		{
			name:  "empty pieces dropped",
			value: "Item A, , Item B,",
			want:  []string{"Item A", "Item B"},
		},
		{
			name:  "single item",
			value: "Consulting Services",
			want:  []string{"Consulting Services"},
		},
		{
			name:  "native list",
			value: []interface{}{"Item A", nil, "Item B"},
			want:  []string{"Item A", "Item B"},
		},
		{
			name:  "string slice",
			value: []string{"Item A", "Item B"},
			want:  []string{"Item A", "Item B"},
		},
		{
			name:  "mixed type json array",
			value: `["Item A", 5, 2.5, true]`,
			want:  []string{"Item A", "5", "2.5", "true"},
		},
		{
			name:  "json nulls dropped",
			value: `["Item A", null, "Item B"]`,
			want:  []string{"Item A", "Item B"},
		},
		{
			name:  "malformed json falls back to delimiters",
			value: `["Item A", "Item B"`,
			want:  []string{`["Item A`, "Item B"},
		},
		{"bytes from driver", []byte(`["Item A"]`), []string{"Item A"}},
		{"nil", nil, []string{}},
		{"empty string", "", []string{}},
		{"whitespace", "   ", []string{}},
		{"empty json array", "[]", []string{}},
		{"empty native list", []interface{}{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ParseTextField(tt.value))
		})
	}
}

func TestParseNumericField(t *testing.T) {
	p := NewFieldParser(nil)

	tests := []struct {
		name  string
		value interface{}
		want  []float64
	}{
		{
			name:  "json array of numbers",
			value: "[4463.3, 2581.2]",
			want:  []float64{4463.3, 2581.2},
		},
		{
			name:  "json array of numeric strings",
			value: `["25.50", "15.00"]`,
			want:  []float64{25.5, 15},
		},
		{
			name:  "comma separated",
			value: "25.50, 15.00, 8.99",
			want:  []float64{25.5, 15, 8.99},
		},
		{
			name:  "currency symbols stripped",
			value: "$25.50; $15.00",
			want:  []float64{25.5, 15},
		},
		{
			name:  "unparseable elements become zero",
			value: "25.50, abc, 8.99",
			want:  []float64{25.5, 0, 8.99},
		},
		{
			name:  "json nulls become zero",
			value: "[25.5, null, 8.99]",
			want:  []float64{25.5, 0, 8.99},
		},
		{
			name:  "native list",
			value: []interface{}{25.5, "15.00", 3},
			want:  []float64{25.5, 15, 3},
		},
		{
			name:  "negative values",
			value: "-25.50, 15.00",
			want:  []float64{-25.5, 15},
		},
		{
			name:  "single value",
			value: "42",
			want:  []float64{42},
		},
		{"nil", nil, []float64{}},
		{"empty string", "", []float64{}},
		{"empty json array", "[]", []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ParseNumericField(tt.value))
		})
	}
}

func TestFieldValue(t *testing.T) {
	assert.True(t, ValueOf(nil).IsNull())
	assert.True(t, ValueOf(nil).IsEmpty())
	assert.True(t, ValueOf("   ").IsEmpty())
	assert.True(t, ValueOf([]interface{}{}).IsEmpty())
	assert.False(t, ValueOf("x").IsEmpty())
	assert.False(t, ValueOf("x").IsNull())

	assert.Equal(t, "a, 5, 2.5", ValueOf([]interface{}{"a", 5.0, 2.5, nil}).Text())
	assert.Equal(t, "raw", ValueOf([]byte("raw")).Text())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.56", 1234.56},
		{"25.50", 25.5},
		{"EUR 99", 99},
		{"-5", -5},
		{"n/a", 0},
		{"", 0},
		{"..", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAmount(tt.in), "parseAmount(%q)", tt.in)
	}
}
