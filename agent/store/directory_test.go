package store

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestDefaultGetIgnoresCaseAndWhitespace(t *testing.T) {
	t.Parallel()

	d := Default()
	for _, name := range []string{"Oakville", "Burnaby", "Halifax"} {
		want, ok := d.Get(name)
		if !ok {
			t.Fatalf("Get(%q) not found", name)
		}
		variants := []string{
			name,
			"  " + name + "\t",
			strings.ToLower(name),
			strings.ToUpper(name),
		}
		for _, v := range variants {
			got, ok := d.Get(v)
			if !ok {
				t.Fatalf("Get(%q) not found", v)
			}
			if got.ID != want.ID || got.Name != want.Name {
				t.Fatalf("Get(%q) = %s/%s, want %s/%s", v, got.ID, got.Name, want.ID, want.Name)
			}
		}
	}
}

func TestDefaultGetUnknownIsAbsent(t *testing.T) {
	t.Parallel()

	d := Default()
	for _, name := range []string{"Toronto", "", "oak", "Oakville Store"} {
		if _, ok := d.Get(name); ok {
			t.Fatalf("Get(%q) should not match", name)
		}
	}
}

func TestDefaultOakvilleRecord(t *testing.T) {
	t.Parallel()

	rec, ok := Default().Get("oakville")
	if !ok {
		t.Fatal("oakville missing")
	}
	if rec.ID != "8c5dc6ab-a958-4b1d-be32-5b38bdb21b80" {
		t.Fatalf("unexpected id: %s", rec.ID)
	}

	raw, err := json.Marshal(rec.Hours)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"Monday - Saturday":"8:00 AM to 9:00 PM","Sunday":"10:00 AM to 6:00 PM"}`
	if string(raw) != want {
		t.Fatalf("hours json = %s, want %s", raw, want)
	}
}

func TestDefaultBurnabyHoursKeepOrder(t *testing.T) {
	t.Parallel()

	rec, _ := Default().Get("Burnaby")
	raw, err := json.Marshal(rec.Hours)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"Monday - Friday":"7:30 AM to 9:00 PM","Saturday":"8:00 AM to 8:00 PM","Sunday":"10:00 AM to 5:00 PM"}`
	if string(raw) != want {
		t.Fatalf("hours json = %s, want %s", raw, want)
	}
}

func TestNamesSentence(t *testing.T) {
	t.Parallel()

	if got := Default().NamesSentence(); got != "Oakville, Burnaby, or Halifax" {
		t.Fatalf("NamesSentence() = %q", got)
	}
}

func TestGetReturnsCopies(t *testing.T) {
	t.Parallel()

	d := Default()
	rec, _ := d.Get("halifax")
	rec.Departments[0] = "Mutated"
	rec.Hours[0].Open = "never"

	again, _ := d.Get("halifax")
	if again.Departments[0] != "Sales" {
		t.Fatalf("directory mutated through returned record: %v", again.Departments)
	}
	if again.Hours[0].Open != "8:00 AM to 10:00 PM" {
		t.Fatalf("directory hours mutated: %v", again.Hours)
	}
}

func TestEveryRecordHasHoursAndDepartments(t *testing.T) {
	t.Parallel()

	for _, rec := range Default().Records() {
		if len(rec.Hours) == 0 || len(rec.Departments) == 0 {
			t.Fatalf("record %s is incomplete", rec.Name)
		}
	}
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	valid := LocationRecord{
		ID:          "id-1",
		Name:        "Oakville",
		Hours:       Hours{{Days: "Sunday", Open: "9 to 5"}},
		Departments: []string{"Sales"},
	}

	cases := map[string][]LocationRecord{
		"empty":          nil,
		"missing id":     {{Name: "X", Hours: valid.Hours, Departments: valid.Departments}},
		"no hours":       {{ID: "1", Name: "X", Departments: valid.Departments}},
		"no departments": {{ID: "1", Name: "X", Hours: valid.Hours}},
		"duplicate":      {valid, {ID: "id-2", Name: " oakville ", Hours: valid.Hours, Departments: valid.Departments}},
	}
	for name, recs := range cases {
		if _, err := New(recs...); !errors.Is(err, ErrInvalidDirectory) {
			t.Fatalf("%s: New() error = %v, want ErrInvalidDirectory", name, err)
		}
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	t.Parallel()

	if _, err := Load([]byte("locations: [")); !errors.Is(err, ErrInvalidDirectory) {
		t.Fatalf("Load() error = %v, want ErrInvalidDirectory", err)
	}
}

func TestConcurrentLookups(t *testing.T) {
	t.Parallel()

	d := Default()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range d.Names() {
				if _, ok := d.Get(name); !ok {
					t.Errorf("Get(%q) not found", name)
				}
			}
		}()
	}
	wg.Wait()
}
