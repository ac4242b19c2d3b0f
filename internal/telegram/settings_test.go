package telegram

import (
	"testing"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

func TestParseConfigArgs(t *testing.T) {
	current := dal.DefaultSubscriber(dal.UserIdentity(1))
	current.Schedule = [7]int{10, 20, 30, 40, 50, 60, 70}

	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, patch dal.SubscriberPatch)
		wantErr bool
	}{
		{
			name: "timezone",
			args: []string{"timezone", "Europe/Kyiv"},
			check: func(t *testing.T, patch dal.SubscriberPatch) {
				if patch.Timezone == nil || *patch.Timezone != "Europe/Kyiv" {
					t.Errorf("patch = %+v", patch)
				}
			},
		},
		{
			name: "time for all days",
			args: []string{"time", "08:30"},
			check: func(t *testing.T, patch dal.SubscriberPatch) {
				if patch.Schedule == nil {
					t.Fatal("schedule not patched")
				}
				for day, minutes := range *patch.Schedule {
					if minutes != 8*60+30 {
						t.Errorf("day %d = %d, want 510", day, minutes)
					}
				}
			},
		},
		{
			name: "time for one day keeps the rest",
			args: []string{"time", "tuesday", "09:15"},
			check: func(t *testing.T, patch dal.SubscriberPatch) {
				if patch.Schedule == nil {
					t.Fatal("schedule not patched")
				}
				want := current.Schedule
				want[2] = 9*60 + 15
				if *patch.Schedule != want {
					t.Errorf("schedule = %v, want %v", *patch.Schedule, want)
				}
			},
		},
		{
			name: "ipa off",
			args: []string{"ipa", "off"},
			check: func(t *testing.T, patch dal.SubscriberPatch) {
				if patch.IncludeIPA == nil || *patch.IncludeIPA {
					t.Errorf("patch = %+v", patch)
				}
			},
		},
		{
			name: "order mdy",
			args: []string{"order", "MDY"},
			check: func(t *testing.T, patch dal.SubscriberPatch) {
				if patch.DateOrder == nil || *patch.DateOrder != dal.DateOrderMDY {
					t.Errorf("patch = %+v", patch)
				}
			},
		},
		{
			name: "style slash",
			args: []string{"style", "slash"},
			check: func(t *testing.T, patch dal.SubscriberPatch) {
				if patch.DateStyle == nil || *patch.DateStyle != dal.DateStyleShortSlash {
					t.Errorf("patch = %+v", patch)
				}
			},
		},
		{name: "no value", args: []string{"timezone"}, wantErr: true},
		{name: "unknown setting", args: []string{"volume", "11"}, wantErr: true},
		{name: "bad clock", args: []string{"time", "25:00"}, wantErr: true},
		{name: "bad minute", args: []string{"time", "08:61"}, wantErr: true},
		{name: "unknown weekday", args: []string{"time", "someday", "08:00"}, wantErr: true},
		{name: "bad toggle", args: []string{"date", "maybe"}, wantErr: true},
		{name: "bad order", args: []string{"order", "ymd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch, err := parseConfigArgs(tt.args, current)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseConfigArgs(%v) succeeded, want error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseConfigArgs(%v) failed: %v", tt.args, err)
			}
			tt.check(t, patch)
		})
	}
}

func TestRenderSettings(t *testing.T) {
	sub := dal.DefaultSubscriber(dal.UserIdentity(1))
	sub.Timezone = "America/New_York"
	sub.Schedule[2] = 8 * 60 // Tuesday

	got := renderSettings(sub)
	want := `Timezone: America/New_York
Schedule:
  Monday: 00:00
  Tuesday: 08:00
  Wednesday: 00:00
  Thursday: 00:00
  Friday: 00:00
  Saturday: 00:00
  Sunday: 00:00
Date: on
IPA: on
Order: dmy
Style: medium
Silent: off`
	if got != want {
		t.Errorf("renderSettings() =\n%s\nwant\n%s", got, want)
	}
}
