package conversation

import (
	"sort"
	"time"

	"nearby/internal/models"
)

const dateLabelLayout = "Jan 2, 2006"

// DayGroup is one calendar day of messages.
type DayGroup struct {
	Label    string           `json:"label"`
	Messages []models.Message `json:"messages"`
}

// GroupByDay buckets messages by calendar day in now's location. Buckets are
// labelled Today, Yesterday or a date, sorted ascending internally and ordered
// by their first message.
func GroupByDay(messages []models.Message, now time.Time) []DayGroup {
	loc := now.Location()
	type dayKey struct {
		y int
		m time.Month
		d int
	}
	buckets := make(map[dayKey][]models.Message)
	for _, msg := range messages {
		y, m, d := msg.CreatedAt.In(loc).Date()
		k := dayKey{y, m, d}
		buckets[k] = append(buckets[k], msg)
	}

	ty, tm, td := now.Date()
	today := time.Date(ty, tm, td, 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)

	groups := make([]DayGroup, 0, len(buckets))
	for k, msgs := range buckets {
		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
		day := time.Date(k.y, k.m, k.d, 0, 0, 0, 0, loc)
		label := day.Format(dateLabelLayout)
		switch {
		case day.Equal(today):
			label = "Today"
		case day.Equal(yesterday):
			label = "Yesterday"
		}
		groups = append(groups, DayGroup{Label: label, Messages: msgs})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Messages[0].CreatedAt.Before(groups[j].Messages[0].CreatedAt)
	})
	return groups
}
