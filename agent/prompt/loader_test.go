package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	storex "github.com/tanpawarit/buildershub-receptionist/agent/store"
)

func TestSystemMessageRendersDirectory(t *testing.T) {
	t.Parallel()

	msg, err := SystemMessage(context.Background(), storex.Default())
	if err != nil {
		t.Fatalf("SystemMessage() error = %v", err)
	}
	if msg.Role != schema.System {
		t.Fatalf("Role = %s, want system", msg.Role)
	}

	wants := []string{
		"Which of our locations can I help you with today: Oakville, Burnaby, or Halifax?",
		"### Oakville\n- Hours: Monday - Saturday: 8:00 AM to 9:00 PM, Sunday: 10:00 AM to 6:00 PM\n- Departments: Sales, Customer Service, Tool Rental, Contractor Desk",
		"### Burnaby\n- Hours: Monday - Friday: 7:30 AM to 9:00 PM, Saturday: 8:00 AM to 8:00 PM, Sunday: 10:00 AM to 5:00 PM\n- Departments: Sales, Customer Service, Pro Desk",
		"### Halifax\n- Hours: Monday - Saturday: 8:00 AM to 10:00 PM, Sunday: 9:00 AM to 7:00 PM\n- Departments: Sales, Customer Service, Tool Rental, Garden Center",
		"six dollars and fifty cents",
	}
	for _, want := range wants {
		if !strings.Contains(msg.Content, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(msg.Content, "{{") {
		t.Fatal("prompt still contains template actions")
	}
}

func TestSystemMessageFollowsCustomDirectory(t *testing.T) {
	t.Parallel()

	dir, err := storex.New(storex.LocationRecord{
		ID:          "0d5f",
		Name:        "Moncton",
		Hours:       storex.Hours{{Days: "Every day", Open: "9:00 AM to 5:00 PM"}},
		Departments: []string{"Sales"},
	})
	if err != nil {
		t.Fatalf("storex.New() error = %v", err)
	}

	msg, err := SystemMessage(context.Background(), dir)
	if err != nil {
		t.Fatalf("SystemMessage() error = %v", err)
	}
	if !strings.Contains(msg.Content, "### Moncton\n- Hours: Every day: 9:00 AM to 5:00 PM") {
		t.Fatalf("prompt missing custom store:\n%s", msg.Content)
	}
	if strings.Contains(msg.Content, "Oakville") {
		t.Fatal("prompt mentions a store outside the directory")
	}
}
