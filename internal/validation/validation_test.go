package validation

import (
	"strings"
	"testing"

	"github.com/pledgeline/pledgeline/internal/model"
	"github.com/stretchr/testify/assert"
)

func validGoal() *model.Goal {
	return &model.Goal{
		Title:              "Read 20 pages",
		StakeAmount:        50,
		StakeRecipientType: model.RecipientCharity,
		StartDate:          "2025-01-01",
		EndDate:            "2025-03-01",
		CheckInFrequency:   model.FrequencyDaily,
		TargetValue:        20,
		AggregationMethod:  "sum",
		Timezone:           "UTC",
	}
}

func TestValidateGoal(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(g *model.Goal)
		wantErr string
	}{
		{name: "valid", mutate: func(g *model.Goal) {}},
		{name: "single day goal", mutate: func(g *model.Goal) { g.EndDate = g.StartDate }},
		{name: "blank title", mutate: func(g *model.Goal) { g.Title = "   " }, wantErr: "title is required"},
		{name: "long title", mutate: func(g *model.Goal) { g.Title = strings.Repeat("a", 201) }, wantErr: "too long"},
		{name: "bad timezone", mutate: func(g *model.Goal) { g.Timezone = "Mars/Olympus" }, wantErr: "unknown timezone"},
		{name: "bad start", mutate: func(g *model.Goal) { g.StartDate = "01/01/2025" }, wantErr: "start date"},
		{name: "end before start", mutate: func(g *model.Goal) { g.EndDate = "2024-12-31" }, wantErr: "before start"},
		{name: "ten years", mutate: func(g *model.Goal) { g.StartDate, g.EndDate = "2025-01-01", "2035-01-01" }},
		{name: "too long", mutate: func(g *model.Goal) { g.StartDate, g.EndDate = "2025-01-01", "2035-01-02" }, wantErr: "longer than 10 years"},
		{name: "far future", mutate: func(g *model.Goal) { g.StartDate, g.EndDate = "0001-01-01", "9999-12-31" }, wantErr: "longer than 10 years"},
		{name: "frequency", mutate: func(g *model.Goal) { g.CheckInFrequency = "hourly" }, wantErr: "frequency"},
		{name: "zero target", mutate: func(g *model.Goal) { g.TargetValue = 0 }, wantErr: "target value"},
		{name: "zero stake", mutate: func(g *model.Goal) { g.StakeAmount = 0 }, wantErr: "stake amount"},
		{name: "negative buffer", mutate: func(g *model.Goal) { g.InitialBufferDays = -1 }, wantErr: "buffer"},
		{name: "aggregation", mutate: func(g *model.Goal) { g.AggregationMethod = "median" }, wantErr: "aggregation"},
		{name: "recipient", mutate: func(g *model.Goal) { g.StakeRecipientType = "me" }, wantErr: "recipient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGoal()
			tt.mutate(g)
			err := ValidateGoal(g)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateCheckIn(t *testing.T) {
	negative := -1.0
	zero := 0.0
	good := "https://example.com/run.png"
	bad := "ftp://example.com/run.png"

	tests := []struct {
		name    string
		checkIn model.CheckIn
		wantErr bool
	}{
		{name: "default value", checkIn: model.CheckIn{Date: "2025-01-02", Status: model.CheckInSuccess}},
		{name: "zero value", checkIn: model.CheckIn{Date: "2025-01-02", Status: model.CheckInSuccess, Value: &zero}},
		{name: "timestamp date", checkIn: model.CheckIn{Date: "2025-01-02T10:00:00Z", Status: model.CheckInPending}},
		{name: "evidence", checkIn: model.CheckIn{Date: "2025-01-02", Status: model.CheckInSuccess, EvidenceURL: &good}},
		{name: "bad date", checkIn: model.CheckIn{Date: "tomorrow", Status: model.CheckInSuccess}, wantErr: true},
		{name: "bad status", checkIn: model.CheckIn{Date: "2025-01-02", Status: "done"}, wantErr: true},
		{name: "negative", checkIn: model.CheckIn{Date: "2025-01-02", Status: model.CheckInSuccess, Value: &negative}, wantErr: true},
		{name: "bad evidence", checkIn: model.CheckIn{Date: "2025-01-02", Status: model.CheckInSuccess, EvidenceURL: &bad}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCheckIn(&tt.checkIn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEvidenceURL(t *testing.T) {
	assert.NoError(t, ValidateEvidenceURL(""))
	assert.NoError(t, ValidateEvidenceURL("http://example.com/a"))
	assert.Error(t, ValidateEvidenceURL("example.com/a"))
	assert.Error(t, ValidateEvidenceURL("https://"+strings.Repeat("a", 2050)))
}
