package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	storex "github.com/tanpawarit/buildershub-receptionist/agent/store"
)

// Greeting is spoken as soon as the receptionist joins a call.
const Greeting = "Welcome to Builder's Hub Hardware, how can I help you today?"

var (
	//go:embed template/receptionist.tmpl
	receptionistRaw string
)

type locationView struct {
	Name        string
	Hours       string
	Departments string
}

// SystemMessage renders the receptionist instructions with the store details
// taken from dir, so the prompt never disagrees with the tools.
func SystemMessage(ctx context.Context, dir *storex.Directory) (*schema.Message, error) {
	records := dir.Records()
	locations := make([]locationView, 0, len(records))
	for _, rec := range records {
		hours := make([]string, 0, len(rec.Hours))
		for _, line := range rec.Hours {
			hours = append(hours, line.Days+": "+line.Open)
		}
		locations = append(locations, locationView{
			Name:        rec.Name,
			Hours:       strings.Join(hours, ", "),
			Departments: strings.Join(rec.Departments, ", "),
		})
	}

	msgs, err := schema.SystemMessage(strings.TrimSpace(receptionistRaw)).Format(ctx, map[string]any{
		"LocationNames": dir.NamesSentence(),
		"Locations":     locations,
	}, schema.GoTemplate)
	if err != nil {
		return nil, fmt.Errorf("render receptionist prompt: %w", err)
	}
	if len(msgs) != 1 {
		return nil, fmt.Errorf("render receptionist prompt: got %d messages", len(msgs))
	}
	return msgs[0], nil
}
