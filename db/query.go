package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"matserver/models"
)

// Condition is one "path operator value" clause of an assessment query.
type Condition struct {
	Path        string     // gjson path into the assessment object, e.g. "status" or "jobId"
	Operator    string     // base operator, lower case, without the -insensitive suffix
	Value       any        // string, float64, bool or nil
	Literal     string     // value text as written, unquoted
	ValueType   gjson.Type // type of Value
	Insensitive bool
	Original    string
}

// LogicalOperator joins two conditions.
type LogicalOperator string

const (
	LogicAnd LogicalOperator = "and"
	LogicOr  LogicalOperator = "or"
)

// Query is a parsed content query. Logic[i] joins Conditions[i] and
// Conditions[i+1]; evaluation is strictly left to right.
type Query struct {
	Conditions []Condition
	Logic      []LogicalOperator
}

var operators = map[string]bool{
	"equals": true, "notequals": true,
	"greaterthan": true, "lessthan": true,
	"greaterthanorequals": true, "lessthanorequals": true,
	"contains": true, "startswith": true, "endswith": true,
}

// Only text operators take the -insensitive suffix.
var insensitiveOperators = map[string]bool{
	"equals": true, "notequals": true, "contains": true, "startswith": true, "endswith": true,
}

// ParseQuery parses alternating conditions and logical operators, e.g.
// ["status equals Running", "and", "date greaterThanOrEquals 2024-05-01"].
// An empty slice yields a nil query, which matches everything.
func ParseQuery(parts []string) (*Query, error) {
	if len(parts) == 0 {
		return nil, nil
	}

	q := &Query{}
	expectCondition := true
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("query part at index %d is empty", i)
		}
		if expectCondition {
			cond, err := parseCondition(part)
			if err != nil {
				return nil, fmt.Errorf("invalid condition at index %d ('%s'): %w", i, part, err)
			}
			q.Conditions = append(q.Conditions, cond)
		} else {
			logic := LogicalOperator(strings.ToLower(part))
			if logic != LogicAnd && logic != LogicOr {
				return nil, fmt.Errorf("invalid logical operator at index %d: '%s', expected 'and' or 'or'", i, part)
			}
			q.Logic = append(q.Logic, logic)
		}
		expectCondition = !expectCondition
	}
	if expectCondition {
		return nil, errors.New("query must end with a condition, not a logical operator")
	}
	return q, nil
}

func parseCondition(s string) (Condition, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Condition{}, errors.New("condition must be 'path operator value'")
	}

	path := fields[0]
	operator := strings.ToLower(fields[1])
	insensitive := false
	if base, ok := strings.CutSuffix(operator, "-insensitive"); ok {
		if !insensitiveOperators[base] {
			return Condition{}, fmt.Errorf("operator '%s' has no case-insensitive form", base)
		}
		operator, insensitive = base, true
	}
	if !operators[operator] {
		return Condition{}, fmt.Errorf("invalid operator '%s'", fields[1])
	}

	// The value is everything after the operator, spacing preserved.
	afterPath := strings.Index(s, fields[0]) + len(fields[0])
	afterOp := afterPath + strings.Index(s[afterPath:], fields[1]) + len(fields[1])
	rest := strings.TrimSpace(s[afterOp:])
	cond := Condition{Path: path, Operator: operator, Insensitive: insensitive, Original: s}

	// Number is checked before bool so "1" stays numeric.
	switch {
	case len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"':
		cond.Literal = rest[1 : len(rest)-1]
		cond.Value, cond.ValueType = cond.Literal, gjson.String
	case rest == "null":
		cond.Literal, cond.ValueType = rest, gjson.Null
	default:
		cond.Literal = rest
		if f, err := strconv.ParseFloat(rest, 64); err == nil {
			cond.Value, cond.ValueType = f, gjson.Number
		} else if b, err := strconv.ParseBool(rest); err == nil {
			cond.Value, cond.ValueType = b, gjson.False
			if b {
				cond.ValueType = gjson.True
			}
		} else {
			cond.Value, cond.ValueType = rest, gjson.String
		}
	}
	return cond, nil
}

// Match reports whether the JSON object satisfies the query.
func (q *Query) Match(object string) (bool, error) {
	if q == nil || len(q.Conditions) == 0 {
		return true, nil
	}
	result, err := q.Conditions[0].match(object)
	if err != nil {
		return false, err
	}
	for i, logic := range q.Logic {
		next, err := q.Conditions[i+1].match(object)
		if err != nil {
			return false, err
		}
		switch logic {
		case LogicAnd:
			result = result && next
		case LogicOr:
			result = result || next
		}
	}
	return result, nil
}

func (c Condition) match(object string) (bool, error) {
	target := gjson.Get(object, c.Path)
	if !target.Exists() {
		// Passthrough fields differ between assessments; absent is not an error.
		return c.Operator == "notequals", nil
	}

	if target.IsArray() {
		if c.Operator != "contains" {
			return false, fmt.Errorf("operator '%s' is invalid for array '%s'", c.Operator, c.Path)
		}
		found := false
		target.ForEach(func(_, el gjson.Result) bool {
			found = c.equalsValue(el)
			return !found
		})
		return found, nil
	}

	if target.Type == gjson.Null || c.ValueType == gjson.Null {
		bothNull := target.Type == gjson.Null && c.ValueType == gjson.Null
		switch c.Operator {
		case "equals":
			return bothNull, nil
		case "notequals":
			return !bothNull, nil
		default:
			return false, fmt.Errorf("operator '%s' is invalid for null comparison", c.Operator)
		}
	}

	switch target.Type {
	case gjson.String:
		return c.compareText(target.Str)
	case gjson.Number:
		return c.compareNumber(target.Num)
	case gjson.True, gjson.False:
		return c.compareBool(target.Bool())
	default:
		return false, fmt.Errorf("operator '%s' cannot compare JSON objects", c.Operator)
	}
}

// equalsValue matches an array element by type and value.
func (c Condition) equalsValue(el gjson.Result) bool {
	switch el.Type {
	case gjson.String:
		if c.Insensitive {
			return strings.EqualFold(el.Str, c.Literal)
		}
		return el.Str == c.Literal
	case gjson.Number:
		f, ok := c.Value.(float64)
		return ok && el.Num == f
	case gjson.True, gjson.False:
		b, ok := c.Value.(bool)
		return ok && el.Bool() == b
	case gjson.Null:
		return c.ValueType == gjson.Null
	}
	return false
}

// compareText compares against the literal as written, so
// "date greaterThan 2024-05-01" and "reportName contains 2024" both work.
// Ordering operators compare lexically, which suits ISO dates.
func (c Condition) compareText(s string) (bool, error) {
	v := c.Literal
	if c.Insensitive {
		s, v = strings.ToLower(s), strings.ToLower(v)
	}
	switch c.Operator {
	case "equals":
		return s == v, nil
	case "notequals":
		return s != v, nil
	case "contains":
		return strings.Contains(s, v), nil
	case "startswith":
		return strings.HasPrefix(s, v), nil
	case "endswith":
		return strings.HasSuffix(s, v), nil
	case "greaterthan":
		return s > v, nil
	case "lessthan":
		return s < v, nil
	case "greaterthanorequals":
		return s >= v, nil
	case "lessthanorequals":
		return s <= v, nil
	}
	return false, fmt.Errorf("internal error: unknown operator '%s'", c.Operator)
}

func (c Condition) compareNumber(n float64) (bool, error) {
	v, ok := c.Value.(float64)
	if !ok {
		if c.Operator == "notequals" {
			return true, nil
		}
		return false, fmt.Errorf("type mismatch: value '%s' is not a valid number for operator '%s'", c.Literal, c.Operator)
	}
	switch c.Operator {
	case "equals":
		return n == v, nil
	case "notequals":
		return n != v, nil
	case "greaterthan":
		return n > v, nil
	case "lessthan":
		return n < v, nil
	case "greaterthanorequals":
		return n >= v, nil
	case "lessthanorequals":
		return n <= v, nil
	}
	return false, fmt.Errorf("type mismatch: cannot apply text operator '%s' to numeric value", c.Operator)
}

func (c Condition) compareBool(b bool) (bool, error) {
	v, ok := c.Value.(bool)
	switch c.Operator {
	case "equals", "notequals":
		if !ok {
			if c.Operator == "notequals" {
				return true, nil
			}
			return false, fmt.Errorf("type mismatch: value '%s' is not a valid boolean", c.Literal)
		}
		return (b == v) == (c.Operator == "equals"), nil
	}
	return false, fmt.Errorf("operator '%s' is invalid for boolean comparison", c.Operator)
}

// AssessmentQuery holds the list options for QueryAssessments.
type AssessmentQuery struct {
	ContentQuery []string // alternating conditions and "and"/"or"
	SortBy       string   // "" keeps stored order; "id", "date", "reportName", "type" or "status"
	Order        string   // "asc" (default) or "desc"
}

// QueryAssessments returns the user's assessments filtered and sorted by
// params. Bad query syntax is a validation error. An assessment the query
// cannot be evaluated against (a type mismatch) is logged and left out.
// Without a sort key the stored order is kept, reversed for "desc".
func (s *Store) QueryAssessments(ctx context.Context, email string, params AssessmentQuery) ([]models.Assessment, error) {
	q, err := ParseQuery(params.ContentQuery)
	if err != nil {
		return nil, validationError("Invalid content_query: " + err.Error())
	}
	order, err := assessmentOrder(params.SortBy, params.Order)
	if err != nil {
		return nil, err
	}

	all, err := s.GetAssessments(ctx, email)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Assessment, 0, len(all))
	for _, a := range all {
		if q != nil {
			data, err := json.Marshal(a)
			if err != nil {
				return nil, fmt.Errorf("encode assessment %d: %w", a.ID, err)
			}
			ok, err := q.Match(string(data))
			if err != nil {
				log.Printf("WARN: Skipping assessment %d in content query: %v", a.ID, err)
				continue
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, a)
	}

	order(matched)
	return matched, nil
}

// assessmentOrder returns a function that puts a result list in the requested
// order in place.
func assessmentOrder(sortBy, order string) (func([]models.Assessment), error) {
	var key func(a, b models.Assessment) int
	switch strings.ToLower(sortBy) {
	case "":
	case "id":
		key = func(a, b models.Assessment) int {
			switch {
			case a.ID < b.ID:
				return -1
			case a.ID > b.ID:
				return 1
			}
			return 0
		}
	case "date":
		key = func(a, b models.Assessment) int { return strings.Compare(a.Date, b.Date) }
	case "reportname":
		key = func(a, b models.Assessment) int { return strings.Compare(a.ReportName, b.ReportName) }
	case "type":
		key = func(a, b models.Assessment) int { return strings.Compare(a.Type, b.Type) }
	case "status":
		key = func(a, b models.Assessment) int { return strings.Compare(a.Status, b.Status) }
	default:
		return nil, validationError(fmt.Sprintf("Invalid sort_by value: '%s', expected 'id', 'date', 'reportName', 'type' or 'status'", sortBy))
	}

	var desc bool
	switch strings.ToLower(order) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, validationError(fmt.Sprintf("Invalid order value: '%s', expected 'asc' or 'desc'", order))
	}

	return func(list []models.Assessment) {
		switch {
		case key == nil && desc:
			slices.Reverse(list)
		case key != nil:
			sort.SliceStable(list, func(i, j int) bool {
				if desc {
					return key(list[i], list[j]) > 0
				}
				return key(list[i], list[j]) < 0
			})
		}
	}, nil
}
