package domain

// ValidateBalanced checks that a posting has at least two lines and that
// debits and credits net to zero.
func ValidateBalanced(lines []LedgerEntryLine) error {
	if len(lines) < 2 {
		return ErrInvalidEntryLines
	}

	var net int64
	for _, line := range lines {
		if line.Amount < 0 {
			return ErrInvalidLineAmount
		}
		switch line.Direction {
		case LedgerEntryDirectionDebit:
			net += line.Amount
		case LedgerEntryDirectionCredit:
			net -= line.Amount
		default:
			return ErrInvalidLineDirection
		}
	}

	if net != 0 {
		return ErrUnbalancedEntry
	}
	return nil
}
