package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

const configUsageMsg = `usage:
/config timezone <IANA name>
/config time <HH:MM>
/config time <weekday> <HH:MM>
/config date on|off
/config ipa on|off
/config order dmy|mdy
/config style long|medium|short|slash
/config silent on|off`

var weekdayNames = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// parseConfigArgs turns a /config invocation into a patch. Schedule edits are
// built on top of the current schedule because the patch replaces all seven
// days at once.
func parseConfigArgs(args []string, current dal.Subscriber) (dal.SubscriberPatch, error) {
	if len(args) < 2 {
		return dal.SubscriberPatch{}, fmt.Errorf("setting and value are required")
	}

	setting, values := strings.ToLower(args[0]), args[1:]
	switch setting {
	case "timezone":
		tz := values[0]
		return dal.SubscriberPatch{Timezone: &tz}, nil
	case "time":
		return parseTimeArgs(values, current.Schedule)
	case "date":
		return onOffPatch(values[0], func(v bool) dal.SubscriberPatch {
			return dal.SubscriberPatch{IncludeDate: &v}
		})
	case "ipa":
		return onOffPatch(values[0], func(v bool) dal.SubscriberPatch {
			return dal.SubscriberPatch{IncludeIPA: &v}
		})
	case "silent":
		return onOffPatch(values[0], func(v bool) dal.SubscriberPatch {
			return dal.SubscriberPatch{Silent: &v}
		})
	case "order":
		order, err := dal.ParseDateOrder(strings.ToLower(values[0]))
		if err != nil {
			return dal.SubscriberPatch{}, err
		}
		return dal.SubscriberPatch{DateOrder: &order}, nil
	case "style":
		style, err := dal.ParseDateStyle(strings.ToLower(values[0]))
		if err != nil {
			return dal.SubscriberPatch{}, err
		}
		return dal.SubscriberPatch{DateStyle: &style}, nil
	default:
		return dal.SubscriberPatch{}, fmt.Errorf("unknown setting %q", setting)
	}
}

func parseTimeArgs(values []string, schedule [7]int) (dal.SubscriberPatch, error) {
	switch len(values) {
	case 1:
		minutes, err := parseClock(values[0])
		if err != nil {
			return dal.SubscriberPatch{}, err
		}
		for i := range schedule {
			schedule[i] = minutes
		}
	case 2:
		day, ok := weekdayNames[strings.ToLower(values[0])]
		if !ok {
			return dal.SubscriberPatch{}, fmt.Errorf("unknown weekday %q", values[0])
		}
		minutes, err := parseClock(values[1])
		if err != nil {
			return dal.SubscriberPatch{}, err
		}
		schedule[day] = minutes
	default:
		return dal.SubscriberPatch{}, fmt.Errorf("time takes HH:MM or weekday HH:MM")
	}

	return dal.SubscriberPatch{Schedule: &schedule}, nil
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("time %q must be HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("time %q must be HH:MM", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q must be HH:MM", s)
	}
	return hour*60 + minute, nil
}

func onOffPatch(value string, build func(bool) dal.SubscriberPatch) (dal.SubscriberPatch, error) {
	switch strings.ToLower(value) {
	case "on":
		return build(true), nil
	case "off":
		return build(false), nil
	default:
		return dal.SubscriberPatch{}, fmt.Errorf("value %q must be on or off", value)
	}
}

func renderSettings(sub dal.Subscriber) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Timezone: %s\n", sub.Timezone)
	b.WriteString("Schedule:\n")
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	for i, name := range names {
		day := (i + 1) % 7
		fmt.Fprintf(b, "  %s: %02d:%02d\n", name, sub.Schedule[day]/60, sub.Schedule[day]%60)
	}
	fmt.Fprintf(b, "Date: %s\n", onOff(sub.Prefs.IncludeDate))
	fmt.Fprintf(b, "IPA: %s\n", onOff(sub.Prefs.IncludeIPA))
	fmt.Fprintf(b, "Order: %s\n", sub.Prefs.DateOrder)
	fmt.Fprintf(b, "Style: %s\n", sub.Prefs.DateStyle)
	fmt.Fprintf(b, "Silent: %s", onOff(sub.Prefs.Silent))
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
