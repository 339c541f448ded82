package domain

import "testing"

func TestNewNode(t *testing.T) {
	t.Run("creates node with defaults", func(t *testing.T) {
		node := NewNode("NEURAL_HUB", CategoryCognition, "")

		if node.Label != "NEURAL_HUB" {
			t.Errorf("expected label to default to id, got %s", node.Label)
		}
		if node.Status != StatusOnline {
			t.Errorf("expected status %s, got %s", StatusOnline, node.Status)
		}
	})
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("Category(%s).Valid() = false", c)
		}
	}
	if Category("quantum").Valid() {
		t.Error("expected unknown category to be invalid")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"ONLINE", StatusOnline},
		{"Degraded", StatusDegraded},
		{" experimental ", StatusExperimental},
		{"lost", Status("lost")},
	}

	for _, tt := range tests {
		if got := ParseStatus(tt.input); got != tt.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
