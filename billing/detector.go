package billing

// DefaultUnpaidThreshold flags a student for collections follow-up after
// this many unbroken unpaid/partial periods.
const DefaultUnpaidThreshold = 2

// HasConsecutiveUnpaid walks period statuses in chronological order
// maintaining a run counter: unpaid and partial_payment increment it, and
// not_started/no_enrollment are skipped without resetting (future periods
// must not mask a prior streak, nor count toward it). Any other status
// resets the run. Returns true as soon as the counter reaches threshold.
func HasConsecutiveUnpaid(statuses []PaymentStatus, threshold int) bool {
	if threshold <= 0 {
		return false
	}

	run := 0
	for _, s := range statuses {
		switch s {
		case StatusUnpaid, StatusPartialPayment:
			run++
			if run >= threshold {
				return true
			}
		case StatusNotStarted, StatusNoEnrollment:
			// skip: neither counts nor resets
		default:
			run = 0
		}
	}
	return false
}

// LongestUnpaidRun returns the longest unbroken unpaid/partial run, under
// the same skip rules as HasConsecutiveUnpaid. Used by the alert scanner
// to record how far behind a flagged student is.
func LongestUnpaidRun(statuses []PaymentStatus) int {
	longest, run := 0, 0
	for _, s := range statuses {
		switch s {
		case StatusUnpaid, StatusPartialPayment:
			run++
			if run > longest {
				longest = run
			}
		case StatusNotStarted, StatusNoEnrollment:
			// skip
		default:
			run = 0
		}
	}
	return longest
}
