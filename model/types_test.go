package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestQuestionTypeJSON(t *testing.T) {
	tests := []struct {
		in   string
		want QuestionType
	}{
		{`"text"`, Text},
		{`"SELECT"`, Select},
		{`"multiply_select"`, MultiplySelect},
		{`2`, MultiplySelect},
		{`0`, Text},
	}

	for _, tt := range tests {
		var got QuestionType
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{`"radio"`, `3`, `-1`, `true`} {
		var got QuestionType
		if err := json.Unmarshal([]byte(bad), &got); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", bad)
		}
	}

	b, err := json.Marshal(MultiplySelect)
	if err != nil || string(b) != `"multiply_select"` {
		t.Errorf("Marshal(MultiplySelect) = %s, %v", b, err)
	}
}

func TestQuestionTypeIsChoice(t *testing.T) {
	if Text.IsChoice() {
		t.Error("Text.IsChoice() = true")
	}
	if !Select.IsChoice() || !MultiplySelect.IsChoice() {
		t.Error("choice types must report IsChoice")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan(time.Time): %v", err)
	}
	if d.String() != "2024-03-09" {
		t.Errorf("got %s", d)
	}

	if err := d.Scan("2024-12-31T00:00:00Z"); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	if d.String() != "2024-12-31" {
		t.Errorf("got %s", d)
	}

	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) succeeded, want error")
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2023-01-15"`), &d); err != nil {
		t.Fatal(err)
	}
	if d != NewDate(2023, time.January, 15) {
		t.Errorf("got %v", d)
	}
	if err := json.Unmarshal([]byte(`"15/01/2023"`), &d); err == nil {
		t.Error("expected an error for a non ISO date")
	}
}
