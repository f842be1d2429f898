package verify

import (
	"fmt"
	"net/textproto"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Rule requires a header to be present and contain Expected
type Rule struct {
	Header   string
	Expected string
}

// Checker verifies sender headers stamped by the receiving mail service
type Checker struct {
	rules  []Rule
	logger *zap.Logger
}

// NewChecker creates a new header checker from a header -> expected value map
func NewChecker(headers map[string]string, logger *zap.Logger) *Checker {
	rules := make([]Rule, 0, len(headers))
	for header, expected := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		rules = append(rules, Rule{
			Header:   textproto.CanonicalMIMEHeaderKey(header),
			Expected: expected,
		})
	}
	// Map order is random; keep rejection reasons stable between runs
	sort.Slice(rules, func(i, j int) bool { return rules[i].Header < rules[j].Header })

	if len(rules) > 0 && logger != nil {
		headerNames := make([]string, len(rules))
		for i, r := range rules {
			headerNames[i] = r.Header
		}
		logger.Info("Initialized header verification", zap.Strings("headers", headerNames))
	}

	return &Checker{
		rules:  rules,
		logger: logger,
	}
}

// Verify returns a reason for the first rule the headers fail, or ""
func (c *Checker) Verify(headers map[string][]string) string {
	for _, rule := range c.rules {
		values := headers[rule.Header]
		if len(values) == 0 {
			return fmt.Sprintf("%s is missing, expected %q", rule.Header, rule.Expected)
		}
		// Only the first occurrence counts, later ones may be forged upstream
		if !strings.Contains(values[0], rule.Expected) {
			if c.logger != nil {
				c.logger.Debug("Header verification failed",
					zap.String("header", rule.Header),
					zap.String("actual", values[0]),
					zap.String("expected", rule.Expected))
			}
			return fmt.Sprintf("%s is %q, expected %q", rule.Header, values[0], rule.Expected)
		}
	}
	return ""
}
