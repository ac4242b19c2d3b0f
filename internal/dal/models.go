package dal

import (
	"fmt"
	"time"
)

// DateLayout is the canonical format of word entry dates across storage and transport.
const DateLayout = "2006-01-02"

const (
	DateOrderDMY DateOrder = 0
	DateOrderMDY DateOrder = 1

	DateStyleLong        DateStyle = 0
	DateStyleMedium      DateStyle = 1
	DateStyleShortHyphen DateStyle = 2
	DateStyleShortSlash  DateStyle = 3
)

type (
	DateOrder int
	DateStyle int

	// Identity addresses a delivery target: either a single user (UserID set)
	// or a channel inside a group (GroupID and ChannelID set). The two forms
	// are mutually exclusive.
	Identity struct {
		UserID    int64
		GroupID   int64
		ChannelID int64
	}

	FormatPrefs struct {
		IncludeDate bool
		IncludeIPA  bool
		DateOrder   DateOrder
		DateStyle   DateStyle
		Silent      bool
	}

	// Subscriber is one subscription record. Schedule holds one delivery time
	// per weekday as minutes since local midnight, indexed by time.Weekday
	// (Sunday first).
	Subscriber struct {
		Identity  Identity
		Timezone  string
		Schedule  [7]int
		Prefs     FormatPrefs
		CreatedAt time.Time
	}

	WordEntry struct {
		Date         string
		Word         string
		IPA          string
		PartOfSpeech string
		Definition   string
	}

	// ConfigLink is a single-use token that authorizes reconfiguration of one
	// subscription through the web surface.
	ConfigLink struct {
		Token     string
		Identity  Identity
		CreatedAt time.Time
		ExpiresAt time.Time
	}
)

func ParseDateOrder(s string) (DateOrder, error) {
	switch s {
	case "dmy":
		return DateOrderDMY, nil
	case "mdy":
		return DateOrderMDY, nil
	default:
		return 0, fmt.Errorf("date order %q must be dmy or mdy", s)
	}
}

func (o DateOrder) String() string {
	if o == DateOrderMDY {
		return "mdy"
	}
	return "dmy"
}

func ParseDateStyle(s string) (DateStyle, error) {
	switch s {
	case "long":
		return DateStyleLong, nil
	case "medium":
		return DateStyleMedium, nil
	case "short":
		return DateStyleShortHyphen, nil
	case "slash":
		return DateStyleShortSlash, nil
	default:
		return 0, fmt.Errorf("date style %q must be long, medium, short or slash", s)
	}
}

func (s DateStyle) String() string {
	switch s {
	case DateStyleLong:
		return "long"
	case DateStyleShortHyphen:
		return "short"
	case DateStyleShortSlash:
		return "slash"
	default:
		return "medium"
	}
}

func UserIdentity(userID int64) Identity {
	return Identity{UserID: userID}
}

func ChannelIdentity(groupID, channelID int64) Identity {
	return Identity{GroupID: groupID, ChannelID: channelID}
}

func (i Identity) IsUser() bool {
	return i.UserID != 0
}

func (i Identity) IsChannel() bool {
	return i.GroupID != 0
}

func (i Identity) Valid() bool {
	return i.IsUser() != i.IsChannel()
}

// Key is a stable string form used for map keys and dedupe within a batch.
func (i Identity) Key() string {
	if i.IsUser() {
		return fmt.Sprintf("user/%d", i.UserID)
	}
	return fmt.Sprintf("%d/%d", i.GroupID, i.ChannelID)
}

// DefaultSubscriber returns a new record with the defaults applied on subscribe:
// UTC timezone, midnight delivery every day, full message format.
func DefaultSubscriber(id Identity) Subscriber {
	return Subscriber{
		Identity: id,
		Timezone: "UTC",
		Prefs: FormatPrefs{
			IncludeDate: true,
			IncludeIPA:  true,
			DateOrder:   DateOrderDMY,
			DateStyle:   DateStyleMedium,
		},
	}
}
