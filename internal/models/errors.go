package models

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownCityError is returned when a city is not in the configured set
type UnknownCityError struct {
	City      string
	Supported []string
}

func (e *UnknownCityError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unknown city %q", e.City)
	}
	return fmt.Sprintf("unknown city %q (choose one of: %s)", e.City, strings.Join(e.Supported, ", "))
}

// InvalidMonthError is returned for month selectors outside january..june and "all"
type InvalidMonthError struct {
	Month string
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month %q (choose one of: %s, all)", e.Month, strings.Join(FilterMonths, ", "))
}

// InvalidDayError is returned for day selectors that are not a weekday name or "all"
type InvalidDayError struct {
	Day string
}

func (e *InvalidDayError) Error() string {
	return fmt.Sprintf("invalid day %q (choose a weekday name or all)", e.Day)
}

// MalformedDataError is returned when a city's source is missing or cannot be parsed.
// Row is the 1-based data row (header excluded) when the failure is row specific.
type MalformedDataError struct {
	Source string
	Row    int
	Err    error
}

func (e *MalformedDataError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed data in %s at row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("malformed data in %s: %v", e.Source, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

// EmptyDatasetError is returned when no trips remain after filtering
type EmptyDatasetError struct {
	Filter TripFilter
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("no trips for %s with month=%s day=%s", e.Filter.City, e.Filter.Month, e.Filter.Day)
}

// IsSelectorError reports whether err comes from user input that should be
// asked for again: an unknown city or an invalid month or day.
func IsSelectorError(err error) bool {
	var cityErr *UnknownCityError
	var monthErr *InvalidMonthError
	var dayErr *InvalidDayError
	return errors.As(err, &cityErr) || errors.As(err, &monthErr) || errors.As(err, &dayErr)
}

// IsEmptyDataset reports whether err is an EmptyDatasetError
func IsEmptyDataset(err error) bool {
	var emptyErr *EmptyDatasetError
	return errors.As(err, &emptyErr)
}

// IsMalformedData reports whether err is a MalformedDataError
func IsMalformedData(err error) bool {
	var dataErr *MalformedDataError
	return errors.As(err, &dataErr)
}
