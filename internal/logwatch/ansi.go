package logwatch

import "regexp"

// Terminal control sequences the vere runtime emits into its output:
// CSI sequences (cursor movement, SGR colors), OSC sequences (title
// setting), and lone escapes. Carriage returns are dropped too since
// pipe-pane records the pane's raw byte stream.
var (
	csiRe  = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	oscRe  = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	escRe  = regexp.MustCompile(`\x1b.`)
	ctrlRe = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)
)

// StripControl removes terminal control sequences and control characters
// from a log line, leaving printable text only.
func StripControl(s string) string {
	s = csiRe.ReplaceAllString(s, "")
	s = oscRe.ReplaceAllString(s, "")
	s = escRe.ReplaceAllString(s, "")
	return ctrlRe.ReplaceAllString(s, "")
}
