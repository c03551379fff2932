package habit

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	ok := Habit{Name: "guitar"}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid habit rejected: %v", err)
	}

	bad := []Habit{
		{Name: ""},
		{Name: strings.Repeat("x", 65)},
		{Name: "guitar", Description: strings.Repeat("x", 1025)},
		{Name: "guitar", Frequency: "hourly"},
		{Name: "guitar", Frequency: FrequencyCustom},
		{Name: "guitar", Frequency: FrequencyCustom, CustomDays: []time.Weekday{9}},
	}
	for _, h := range bad {
		if err := Validate(h); err == nil {
			t.Fatalf("want error for %+v", h)
		}
	}
}

func TestScheduledOn(t *testing.T) {
	daily := Habit{Frequency: FrequencyDaily}
	if !daily.ScheduledOn(time.Saturday) {
		t.Fatal("daily habit should run on Saturday")
	}

	weekdays := Habit{Frequency: FrequencyWeekdays}
	if weekdays.ScheduledOn(time.Sunday) || !weekdays.ScheduledOn(time.Wednesday) {
		t.Fatal("weekdays habit should skip Sunday and run Wednesday")
	}

	weekends := Habit{Frequency: FrequencyWeekends}
	if !weekends.ScheduledOn(time.Saturday) || weekends.ScheduledOn(time.Monday) {
		t.Fatal("weekends habit should run Saturday only")
	}

	custom := Habit{Frequency: FrequencyCustom, CustomDays: []time.Weekday{time.Monday, time.Thursday}}
	if !custom.ScheduledOn(time.Thursday) || custom.ScheduledOn(time.Friday) {
		t.Fatal("custom habit should follow its day list")
	}
}
