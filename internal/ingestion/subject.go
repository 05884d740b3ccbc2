package ingestion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSubjectPatterns find the RFP id in "Re: RFP #12 Invitation: ..."
// and "Proposal for RFP ID: 12" style subjects.
var DefaultSubjectPatterns = []string{
	`(?i)RFP\s*#\s*(\d+)`,
	`(?i)RFP\s+ID\s*:\s*#?(\d+)`,
}

var (
	replyPrefix    = regexp.MustCompile(`(?i)^\s*((re|fwd?|fw)\s*:\s*)+`)
	invitationLine = regexp.MustCompile(`(?i)RFP\s+Invitation\s*:\s*(.+)`)
)

// SubjectParser pulls RFP ids out of email subjects. Patterns are tried in
// order; the first capture group of the first match is the id.
type SubjectParser struct {
	patterns []*regexp.Regexp
}

func NewSubjectParser(patterns []string) (*SubjectParser, error) {
	if len(patterns) == 0 {
		patterns = DefaultSubjectPatterns
	}

	p := &SubjectParser{}
	for _, raw := range patterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("subject pattern %q: %w", raw, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("subject pattern %q needs a capture group for the id", raw)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// RFPID returns the id named in subject, if any.
func (p *SubjectParser) RFPID(subject string) (uint, bool) {
	for _, re := range p.patterns {
		m := re.FindStringSubmatch(subject)
		if m == nil {
			continue
		}
		id, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil || id == 0 {
			continue
		}
		return uint(id), true
	}
	return 0, false
}

// InvitationTitle returns the title in a reply to an id-less invitation,
// "Re: RFP Invitation: Office Laptops" gives "Office Laptops".
func InvitationTitle(subject string) (string, bool) {
	clean := replyPrefix.ReplaceAllString(subject, "")
	m := invitationLine.FindStringSubmatch(clean)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(m[1])
	return title, title != ""
}
