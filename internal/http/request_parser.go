// This file implements utilities for parsing and validating HTTP request
// data: month selectors from query strings and JSON request bodies.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// current date as defaults.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	now := time.Now()
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}

	if params.Month < 1 || params.Month > 12 {
		return params, fmt.Errorf("month %d out of range", params.Month)
	}
	if params.Year < 1970 || params.Year > 9999 {
		return params, fmt.Errorf("year %d out of range", params.Year)
	}

	return params, nil
}

// DecodeJSONBody decodes a JSON request body into dst, rejecting unknown
// fields so typos in payloads surface as 400s instead of silent defaults.
func DecodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
