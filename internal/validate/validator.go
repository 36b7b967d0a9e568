package validate

import (
	"math"
	"sort"
)

// Issue records one rule violation at a specific row and column.
// Row numbers are 1-based and count the header as row 1.
type Issue struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Rule    Kind   `json:"rule"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// RowValidator consumes normalized rows one at a time and accumulates
// violations. Only uniqueness tracking retains state proportional to
// the data; every other rule is local to the row being fed.
type RowValidator struct {
	columns []string
	rules   map[string][]Rule
	seen    map[string]map[string][]int // column → value → row numbers
	issues  []Issue
}

// NewRowValidator builds a validator for the given output columns.
// Rules bound to columns not present in the output are ignored.
func NewRowValidator(columns []string, rs RuleSet) (*RowValidator, error) {
	rules, err := rs.Compile()
	if err != nil {
		return nil, err
	}
	present := map[string]bool{}
	for _, c := range columns {
		present[c] = true
	}
	seen := map[string]map[string][]int{}
	for col, colRules := range rules {
		if !present[col] {
			delete(rules, col)
			continue
		}
		for _, r := range colRules {
			if r.Kind == KindUnique {
				seen[col] = map[string][]int{}
			}
		}
	}
	return &RowValidator{columns: columns, rules: rules, seen: seen}, nil
}

// Feed validates one row. rowNum is the row's 1-based position in the
// file, counting the header as row 1.
func (v *RowValidator) Feed(row map[string]string, rowNum int) {
	for _, col := range v.columns {
		colRules, ok := v.rules[col]
		if !ok {
			continue
		}
		val := row[col]
		for _, r := range colRules {
			switch r.Kind {
			case KindEmpty:
				if isEmpty(val) {
					v.add(rowNum, col, KindEmpty, val, "empty value")
				}
			case KindNumeric:
				if !isEmpty(val) {
					if _, ok := parseNum(val); !ok {
						v.add(rowNum, col, KindNumeric, val, "not numeric")
					}
				}
			case KindInteger:
				if !isEmpty(val) {
					f, ok := parseNum(val)
					if !ok || math.Mod(f, 1) != 0 {
						v.add(rowNum, col, KindInteger, val, "not an integer")
					}
				}
			case KindNonnegative:
				if !isEmpty(val) {
					if f, ok := parseNum(val); ok && f < 0 {
						v.add(rowNum, col, KindNonnegative, val, "negative value")
					}
				}
			case KindPattern:
				if !isEmpty(val) {
					if !r.Pattern.MatchString(val) {
						v.add(rowNum, col, KindPattern, val, "does not match pattern")
					}
				}
			case KindUnique:
				if !isEmpty(val) {
					v.seen[col][val] = append(v.seen[col][val], rowNum)
				}
			}
		}
	}
}

// Finalize resolves uniqueness violations and returns all issues
// sorted by (row, column) ascending. Each row carrying a duplicated
// value gets its own issue so the report names every offender.
func (v *RowValidator) Finalize() []Issue {
	for col, store := range v.seen {
		for val, rows := range store {
			if len(rows) < 2 {
				continue
			}
			for _, rn := range rows {
				v.add(rn, col, KindUnique, val, "duplicate value")
			}
		}
	}
	sort.SliceStable(v.issues, func(i, j int) bool {
		if v.issues[i].Row != v.issues[j].Row {
			return v.issues[i].Row < v.issues[j].Row
		}
		return v.issues[i].Column < v.issues[j].Column
	})
	return v.issues
}

func (v *RowValidator) add(row int, col string, kind Kind, val, msg string) {
	v.issues = append(v.issues, Issue{Row: row, Column: col, Rule: kind, Value: val, Message: msg})
}

// Summary counts issues by rule kind.
func Summary(issues []Issue) map[Kind]int {
	out := map[Kind]int{}
	for _, is := range issues {
		out[is.Rule]++
	}
	return out
}
