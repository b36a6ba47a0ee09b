package engineapi

import "github.com/fenrir-eth/fenrir/internal/chainspec"

// validateWithdrawalsPresence decides whether a payload or attributes
// object is schema-valid for the invoked method version, given the
// object's timestamp and the locally configured Shanghai activation rule.
//
// It performs no I/O: the Shanghai check is a pure function of chain
// config and the timestamp the caller already holds.
func validateWithdrawalsPresence(spec *chainspec.ChainConfig, version Version, timestamp uint64, hasWithdrawals bool) error {
	isShanghai := spec.ActiveAtTimestamp(chainspec.Shanghai, timestamp)

	switch {
	case version == V1 && hasWithdrawals:
		return ErrWithdrawalsNotSupportedInV1
	case version == V1 && !hasWithdrawals && isShanghai:
		return ErrNoWithdrawalsPostShanghai
	case version == V2 && !hasWithdrawals && isShanghai:
		return ErrNoWithdrawalsPostShanghai
	case version == V2 && hasWithdrawals && !isShanghai:
		return ErrHasWithdrawalsPreShanghai
	default:
		return nil
	}
}
