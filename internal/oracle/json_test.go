package oracle

import (
	"errors"
	"testing"
)

type pair struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected pair
	}{
		{"plain", `{"name":"a","count":1}`, pair{"a", 1}},
		{"markdown fence", "```json\n{\"name\":\"b\",\"count\":2}\n```", pair{"b", 2}},
		{"prose around fence", "Here you go:\n```\n{\"name\":\"c\",\"count\":3}\n```\nHope it helps", pair{"c", 3}},
		{"trailing text", `{"name":"d","count":4} and more`, pair{"d", 4}},
		{"think block", "<think>{\"name\":\"x\"}</think>{\"name\":\"e\",\"count\":5}", pair{"e", 5}},
		{"trailing comma", `{"name":"f","count":6,}`, pair{"f", 6}},
		{"missing comma between keys", "{\"name\":\"g\"\n\"count\":7}", pair{"g", 7}},
		{"single quoted key", `{'name':"h",'count':8}`, pair{"h", 8}},
		{"truncated", `{"name":"i","count":9`, pair{"i", 9}},
		{"raw newline in string", "{\"name\":\"j\nk\",\"count\":10}", pair{"j\nk", 10}},
		{"quoted json string", `"{\"name\":\"l\",\"count\":11}"`, pair{"l", 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON[pair](tt.input)
			if err != nil {
				t.Fatalf("ParseJSON(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseJSON(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseJSON_NoJSON(t *testing.T) {
	for _, input := range []string{"", "   ", "I cannot answer that."} {
		if _, err := ParseJSON[pair](input); !errors.Is(err, ErrNoJSON) {
			t.Errorf("ParseJSON(%q) error = %v, want ErrNoJSON", input, err)
		}
	}
}

func TestCloseTruncated(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{`{"a":[1,2`, `{"a":[1,2]}`},
		{`{"a":"x`, `{"a":"x"}`},
		{`{"a":"}"`, `{"a":"}"}`},
		{`[{"a":1}`, `[{"a":1}]`},
	}
	for _, tt := range tests {
		if got := closeTruncated(tt.input); got != tt.expected {
			t.Errorf("closeTruncated(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
