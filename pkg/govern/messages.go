package govern

import (
	"fmt"

	"oecs-hq/lusaka/pkg/modes"
)

// User-facing message builders. Every message is specific: it names the
// mode, the exact cost, and the exact remaining balance, because
// auditability extends to what the user is told.

func warningMessage(mode modes.Mode, cost, remaining float64) string {
	return fmt.Sprintf(
		"RISK BUDGET WARNING: this %s exchange costs %s but only %s remains. "+
			"It will proceed and drain the budget to zero. Reply \"RENEW\" to top up.",
		mode, formatAmount(cost), formatAmount(remaining))
}

func denialMessage(mode modes.Mode, cost, remaining float64) string {
	return fmt.Sprintf(
		"RISK BUDGET EXHAUSTED: this %s exchange costs %s but only %s remains, "+
			"and %s does not permit degraded continuation. No charge was made. "+
			"Reply \"RENEW\" to top up, or switch to a mode that allows continuation.",
		mode, formatAmount(cost), formatAmount(remaining), mode)
}

func depletionNotice(mode modes.Mode, spent float64) string {
	return fmt.Sprintf(
		"NOTICE: risk budget depleted (%s spent) in %s. Further exchanges are "+
			"warned or denied per mode policy, never silently altered. Reply \"RENEW\" to top up.",
		formatAmount(spent), mode)
}

func topUpNote(amount, remaining float64) string {
	return fmt.Sprintf("budget topped up by %s, %s now remaining",
		formatAmount(amount), formatAmount(remaining))
}

func modeChangeNote(from, to modes.Mode) string {
	return fmt.Sprintf("mode changed from %s to %s under a freshly accepted contract", from, to)
}

// formatAmount renders budget amounts without trailing decimal noise.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
