// Package safety flags snippet content that looks destructive.
//
// The checks are heuristic: they catch common catastrophic idioms and are not
// an isolation boundary.
package safety

import (
	"regexp"
	"strings"
)

// Rule is a named dangerous-command pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

func rule(name, pattern string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// Rules is the ordered pattern table. Each line of content is tested against
// every rule.
var Rules = []Rule{
	rule("recursive-force-delete", `\brm\s+(?:-[a-z]*r[a-z]*f[a-z]*|-[a-z]*f[a-z]*r[a-z]*)\s+`),
	rule("recursive-force-delete", `\brm\s+(?:-r|-f|--recursive|--force)\s+(?:-r|-f|--recursive|--force)\s+`),
	rule("sudo-delete", `\bsudo\s+rm\s+-[a-z]*r`),
	rule("truncate-root", `(?:^|[;&|]\s*)>\s*/(?:\s|$)`),
	rule("truncate-root", `(?:^|[\s;&|(]):\s*>\s*/`),
	rule("overwrite-device", `>\s*/dev/(?:sd|hd|vd|xvd|nvme|disk|mmcblk)`),
	rule("raw-disk-write", `\bdd\s+.*\bof=/`),
	rule("make-filesystem", `\bmkfs(?:\.\w+)?\s`),
	rule("shutdown", `\b(?:shutdown|reboot|halt|poweroff)\b`),
	rule("fork-bomb", `:\s*\(\s*\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`),
	rule("fork-bomb", `:\s*\(\s*\)\s*\{\s*:\s*;\s*\}\s*;`),
	rule("account-files", `(?:^|[\s;&|(])(?:g|ch)?passwd(?:\s|$)`),
	rule("account-files", `(?:^|[\s;&|(])(?:userdel|groupdel)\s`),
	rule("account-files", `>\s*/etc/(?:passwd|shadow|group|sudoers)\b`),
	rule("force-kill", `\b(?:killall|pkill)\s+-(?:9|kill)\b`),
	rule("force-kill", `\bkill\s+-9\s+-1\b`),
	rule("force-container-remove", `\bdocker\s+(?:container\s+)?rm\s+(?:\S+\s+)*(?:-[a-z]*f[a-z]*|--force)\b`),
	rule("drop-table", `\bdrop\s+(?:table|database)\b`),
	rule("chmod-root", `\bchmod\s+(?:-[a-z]+\s+)*[0-7]*7\s+/`),
	rule("pipe-to-shell", `\b(?:curl|wget)\b.*\|\s*(?:sudo\s+)?(?:ba|z|k|da)?sh\b`),
	rule("pipe-to-shell", `\bbase64\s+(?:-d|-D|--decode)\b.*\|\s*(?:sudo\s+)?(?:ba|z)?sh\b`),
	rule("eval-substitution", "\\beval\\s+\"?(?:\\$\\(|`)"),
}

// IsDangerous reports whether any line of content matches a rule.
func IsDangerous(content string) bool {
	_, ok := Match(content)
	return ok
}

// Match returns the first rule matched by any line of content.
func Match(content string) (Rule, bool) {
	if content == "" {
		return Rule{}, false
	}
	for _, line := range strings.Split(content, "\n") {
		for _, r := range Rules {
			if r.Pattern.MatchString(line) {
				return r, true
			}
		}
	}
	return Rule{}, false
}
