package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jengzang/bikeshare-go/internal/models"
)

const rule = "----------------------------------------"

// WriteReport prints the four statistics sections as plain text
func WriteReport(w io.Writer, r *models.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s: %d trips (month=%s, day=%s)\n", titleCase(r.City), r.Rows, r.Filter.Month, r.Filter.Day)

	section(&b, "Calculating The Most Frequent Times of Travel...", r.Time.Elapsed, func() {
		fmt.Fprintf(&b, "Most common month: %s\n", r.Time.CommonMonth)
		fmt.Fprintf(&b, "Most common day: %s\n", r.Time.CommonDay)
		fmt.Fprintf(&b, "Most common start hour: %d\n", r.Time.CommonHour)
	})

	section(&b, "Calculating The Most Popular Stations and Trip...", r.Stations.Elapsed, func() {
		fmt.Fprintf(&b, "Most common start station: %s\n", r.Stations.CommonStartStation)
		fmt.Fprintf(&b, "Most common end station: %s\n", r.Stations.CommonEndStation)
		fmt.Fprintf(&b, "Most frequent trip: %s -> %s (%d trips)\n",
			r.Stations.CommonTrip.StartStation, r.Stations.CommonTrip.EndStation, r.Stations.CommonTrip.Count)
	})

	section(&b, "Calculating Trip Duration...", r.Duration.Elapsed, func() {
		d := r.Duration
		fmt.Fprintf(&b, "Total trip duration: %s\n", seconds(d.TotalSeconds))
		fmt.Fprintf(&b, "Mean trip duration: %s\n", seconds(d.MeanSeconds))
		fmt.Fprintf(&b, "Median trip duration: %s\n", seconds(d.MedianSeconds))
		if d.SkippedRows > 0 {
			fmt.Fprintf(&b, "Trips without a valid duration (skipped): %d\n", d.SkippedRows)
		}
		if d.Distance != nil {
			fmt.Fprintf(&b, "Total straight-line distance: %.1f km\n", d.Distance.TotalMeters/1000)
			fmt.Fprintf(&b, "Mean straight-line distance: %.0f m\n", d.Distance.MeanMeters)
		}
	})

	section(&b, "Calculating User Stats...", r.Users.Elapsed, func() {
		b.WriteString("Users by type:\n")
		counts(&b, r.Users.UserTypes)

		demo := r.Users.Demographics
		if !demo.Available {
			fmt.Fprintf(&b, "\nGender and birth year statistics are not available for %s\n", titleCase(r.City))
			return
		}
		b.WriteString("\nUsers by gender:\n")
		counts(&b, demo.Genders)

		if demo.EarliestBirthYear == nil {
			b.WriteString("\nBirth year statistics are not available\n")
			return
		}
		fmt.Fprintf(&b, "\nEarliest birth year: %d\n", *demo.EarliestBirthYear)
		fmt.Fprintf(&b, "Most recent birth year: %d\n", *demo.MostRecentBirthYear)
		fmt.Fprintf(&b, "Most common birth year: %d\n", *demo.CommonBirthYear)
	})

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string, elapsed time.Duration, body func()) {
	fmt.Fprintf(b, "\n%s\n\n", title)
	body()
	fmt.Fprintf(b, "\nThis took %.6f seconds.\n%s\n", elapsed.Seconds(), rule)
}

func counts(b *strings.Builder, values []models.ValueCount) {
	for _, v := range values {
		fmt.Fprintf(b, "  %-12s %d\n", v.Value, v.Count)
	}
}

// seconds formats a duration given in seconds, e.g. "2700 seconds (45m0s)"
func seconds(s float64) string {
	d := time.Duration(s * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%.0f seconds (%s)", s, d)
}
