package dal

import (
	"time"

	"github.com/Masterminds/squirrel"
)

var weekdayColumns = [7]string{
	"sched_sunday", "sched_monday", "sched_tuesday", "sched_wednesday",
	"sched_thursday", "sched_friday", "sched_saturday",
}

// InsertSubscriberQuery builds a query to insert a subscription record.
func InsertSubscriberQuery(sub Subscriber) squirrel.Sqlizer {
	return squirrel.Insert("subscribers").
		Columns("user_id", "group_id", "channel_id", "timezone",
			"sched_sunday", "sched_monday", "sched_tuesday", "sched_wednesday",
			"sched_thursday", "sched_friday", "sched_saturday",
			"include_date", "include_ipa", "date_order", "date_style", "silent").
		Values(sub.Identity.UserID, sub.Identity.GroupID, sub.Identity.ChannelID, sub.Timezone,
			sub.Schedule[time.Sunday], sub.Schedule[time.Monday], sub.Schedule[time.Tuesday],
			sub.Schedule[time.Wednesday], sub.Schedule[time.Thursday], sub.Schedule[time.Friday],
			sub.Schedule[time.Saturday],
			sub.Prefs.IncludeDate, sub.Prefs.IncludeIPA, sub.Prefs.DateOrder, sub.Prefs.DateStyle, sub.Prefs.Silent).
		PlaceholderFormat(squirrel.Dollar)
}

// DeleteSubscriberQuery builds a query to delete a subscription record.
func DeleteSubscriberQuery(id Identity) squirrel.Sqlizer {
	return squirrel.Delete("subscribers").
		Where(identityEq(id)).
		PlaceholderFormat(squirrel.Dollar)
}

// UpdateSubscriberQuery builds a query applying only the fields the patch carries.
func UpdateSubscriberQuery(id Identity, patch SubscriberPatch) squirrel.Sqlizer {
	query := squirrel.Update("subscribers")
	if patch.Timezone != nil {
		query = query.Set("timezone", *patch.Timezone)
	}
	if patch.Schedule != nil {
		for wd, column := range weekdayColumns {
			query = query.Set(column, patch.Schedule[wd])
		}
	}
	if patch.IncludeDate != nil {
		query = query.Set("include_date", *patch.IncludeDate)
	}
	if patch.IncludeIPA != nil {
		query = query.Set("include_ipa", *patch.IncludeIPA)
	}
	if patch.DateOrder != nil {
		query = query.Set("date_order", *patch.DateOrder)
	}
	if patch.DateStyle != nil {
		query = query.Set("date_style", *patch.DateStyle)
	}
	if patch.Silent != nil {
		query = query.Set("silent", *patch.Silent)
	}
	return query.Where(identityEq(id)).PlaceholderFormat(squirrel.Dollar)
}

// FindSubscriberQuery builds a query to fetch one subscription record.
func FindSubscriberQuery(id Identity) squirrel.Sqlizer {
	return selectSubscribers().
		Where(identityEq(id)).
		PlaceholderFormat(squirrel.Dollar)
}

// FindAllSubscribersQuery builds a query to fetch every subscription record.
func FindAllSubscribersQuery() squirrel.Sqlizer {
	return selectSubscribers().PlaceholderFormat(squirrel.Dollar)
}

// InsertWordEntryQuery builds a query to add a word entry for a date.
func InsertWordEntryQuery(entry WordEntry) squirrel.Sqlizer {
	return squirrel.Insert("words").
		Columns("date", "word", "ipa", "part_of_speech", "definition").
		Values(entry.Date, entry.Word, entry.IPA, entry.PartOfSpeech, entry.Definition).
		PlaceholderFormat(squirrel.Dollar)
}

// FindWordByDateQuery builds a query to fetch the word entry of a date.
func FindWordByDateQuery(date string) squirrel.Sqlizer {
	return squirrel.Select("date", "word", "ipa", "part_of_speech", "definition").
		From("words").
		Where(squirrel.Eq{"date": date}).
		PlaceholderFormat(squirrel.Dollar)
}

// FindWordDatesQuery builds a query to list dates a word was published on.
func FindWordDatesQuery(word string) squirrel.Sqlizer {
	return squirrel.Select("date").
		From("words").
		Where(squirrel.Expr("LOWER(word) = LOWER(?)", word)).
		OrderBy("date").
		PlaceholderFormat(squirrel.Dollar)
}

// LatestWordDateQuery builds a query for the most recent date that has an entry.
func LatestWordDateQuery() squirrel.Sqlizer {
	return squirrel.Select("MAX(date)").
		From("words").
		PlaceholderFormat(squirrel.Dollar)
}

// InsertConfigLinkQuery builds a query to store a configuration link token.
func InsertConfigLinkQuery(link ConfigLink) squirrel.Sqlizer {
	return squirrel.Insert("config_links").
		Columns("token", "user_id", "group_id", "channel_id", "expires_at").
		Values(link.Token, link.Identity.UserID, link.Identity.GroupID, link.Identity.ChannelID, link.ExpiresAt).
		PlaceholderFormat(squirrel.Dollar)
}

// FindConfigLinkQuery builds a query to fetch an unexpired configuration link.
func FindConfigLinkQuery(token string) squirrel.Sqlizer {
	return squirrel.Select("token", "user_id", "group_id", "channel_id", "created_at", "expires_at").
		From("config_links").
		Where(squirrel.Eq{"token": token}).
		Where(squirrel.Expr("expires_at > datetime('now', 'localtime')")).
		PlaceholderFormat(squirrel.Dollar)
}

// DeleteConfigLinkQuery builds a query to delete a configuration link.
func DeleteConfigLinkQuery(token string) squirrel.Sqlizer {
	return squirrel.Delete("config_links").
		Where(squirrel.Eq{"token": token}).
		PlaceholderFormat(squirrel.Dollar)
}

// DeleteExpiredConfigLinksQuery builds the cleanup query for stale links.
func DeleteExpiredConfigLinksQuery() squirrel.Sqlizer {
	return squirrel.Delete("config_links").
		Where(squirrel.Expr("expires_at < datetime('now', 'localtime')")).
		PlaceholderFormat(squirrel.Dollar)
}

func selectSubscribers() squirrel.SelectBuilder {
	return squirrel.Select("user_id", "group_id", "channel_id", "timezone",
		"sched_sunday", "sched_monday", "sched_tuesday", "sched_wednesday",
		"sched_thursday", "sched_friday", "sched_saturday",
		"include_date", "include_ipa", "date_order", "date_style", "silent", "created_at").
		From("subscribers")
}

func identityEq(id Identity) squirrel.Eq {
	return squirrel.Eq{
		"user_id":    id.UserID,
		"group_id":   id.GroupID,
		"channel_id": id.ChannelID,
	}
}
